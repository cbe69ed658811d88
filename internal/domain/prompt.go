package domain

import (
	"fmt"
	"strings"
)

// RatingSystemInstruction is sent as the system message of every rating call.
const RatingSystemInstruction = `You are an expert judge of LLM-generated text. ` +
	`Rate the generated text on a 1-10 scale for each of these five criteria: ` +
	`clarity, relevance, coherence, creativity and overall quality. ` +
	`Respond with only a JSON object, no markdown and no extra text.`

// ratingShape is the JSON shape providers are asked to answer with.
const ratingShape = `{"clarity": <1-10>, "relevance": <1-10>, "coherence": <1-10>, "creativity": <1-10>, "overall": <1-10>}`

// BuildRatingMessages returns the system and user messages for a rating call.
// Prompt and generated text are embedded verbatim.
func BuildRatingMessages(req RatingRequest) []Message {
	var b strings.Builder
	b.WriteString("Prompt:\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n\nGenerated text:\n")
	b.WriteString(req.GeneratedText)
	b.WriteString("\n\nRespond with a JSON object in exactly this shape:\n")
	b.WriteString(ratingShape)

	return []Message{
		{Role: "system", Content: RatingSystemInstruction},
		{Role: "user", Content: b.String()},
	}
}

// GenerationSystemInstruction is sent as the system message of a generation call.
const GenerationSystemInstruction = `You are a skilled writer. ` +
	`Write text that answers the user's prompt while honoring the requested length and style. ` +
	`Return only the text itself.`

// BuildGenerationMessages returns the messages for a controlled generation call.
func BuildGenerationMessages(req GenerationRequest) []Message {
	req = req.WithDefaults()
	user := fmt.Sprintf("Prompt: %s\n\nTarget length: %s\nStyle: %s", req.Prompt, req.TargetLength, req.Style)

	return []Message{
		{Role: "system", Content: GenerationSystemInstruction},
		{Role: "user", Content: user},
	}
}
