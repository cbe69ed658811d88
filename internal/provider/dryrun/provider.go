// Package dryrun provides an offline rating provider for local development.
// It implements domain.RatingProvider without external API calls and answers
// the way real models often do: a short preamble followed by the JSON rating.
package dryrun

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/observability"
)

const (
	minScore   = 1
	scoreRange = 10
)

// Provider implements domain.RatingProvider with deterministic scores.
type Provider struct {
	name string
}

// NewProvider creates a dry-run provider answering under the given identifier.
func NewProvider(name string) *Provider {
	return &Provider{name: name}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Rate returns a rating derived from a hash of the provider name and request,
// so the same request always receives the same answer.
func (p *Provider) Rate(ctx context.Context, req domain.RatingRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.TransportError{Provider: p.name, Message: "request cancelled", Err: err}
	}

	logger := observability.FromContext(ctx)
	logger.Debug("dry-run rating", observability.Int("text_length", len(req.GeneratedText)))

	scores := make([]int, len(domain.RatingCriteria))
	for i, criterion := range domain.RatingCriteria {
		scores[i] = score(p.name, criterion, req)
	}

	var b strings.Builder
	b.WriteString("Here is my assessment: {")
	for i, criterion := range domain.RatingCriteria {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %d", criterion, scores[i])
	}
	b.WriteString("}")

	return b.String(), nil
}

func score(name, criterion string, req domain.RatingRequest) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte(criterion))
	_, _ = h.Write([]byte(req.Prompt))
	_, _ = h.Write([]byte(req.GeneratedText))
	return minScore + int(h.Sum32()%scoreRange)
}
