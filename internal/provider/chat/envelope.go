package chat

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrEnvelopeMismatch indicates the response body lacks the provider's answer field.
var ErrEnvelopeMismatch = errors.New("response envelope has no answer text")

// Envelope extracts the answer text from a provider's response body.
type Envelope func(body []byte) (string, bool)

//nolint:gochecknoglobals // read-only strategy table
var envelopes = map[string]Envelope{
	ProviderSonar: chatChoicesEnvelope,
	ProviderR1:    chatChoicesEnvelope,
	ProviderLlama: llamaCompletionEnvelope,
}

// EnvelopeFor returns the envelope of a provider. Unknown providers are
// assumed to speak the OpenAI chat completion format.
func EnvelopeFor(providerID string) Envelope {
	if envelope, ok := envelopes[providerID]; ok {
		return envelope
	}
	return chatChoicesEnvelope
}

// chatChoicesEnvelope reads choices[0].message.content.
func chatChoicesEnvelope(body []byte) (string, bool) {
	return stringAt(body, "choices.0.message.content")
}

// llamaCompletionEnvelope reads completion_message.content.text, which the
// Llama API uses instead of a choices array. Some deployments return the
// content as a plain string.
func llamaCompletionEnvelope(body []byte) (string, bool) {
	if text, ok := stringAt(body, "completion_message.content.text"); ok {
		return text, true
	}
	return stringAt(body, "completion_message.content")
}

func stringAt(body []byte, path string) (string, bool) {
	result := gjson.GetBytes(body, path)
	if result.Type != gjson.String {
		return "", false
	}
	return result.Str, true
}
