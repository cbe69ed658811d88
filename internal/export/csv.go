// Package export renders evaluations as CSV documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/davidbz/judgepanel/internal/domain"
)

// ContentType is the media type of the documents produced by this package.
const ContentType = "text/csv; charset=utf-8"

var baseColumns = []string{"Prompt", "Generated Text", "Target Length", "Style"}

// Filename returns the download name for an export created at t.
func Filename(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("generated_text_evaluation_%s.csv", stamp)
}

// WriteHistory writes one header row and one row per evaluation. Every
// provider seen in any evaluation gets five columns; evaluations lacking
// that provider leave them empty.
func WriteHistory(w io.Writer, evaluations []domain.Evaluation) error {
	providers := providerIDs(evaluations)

	header := append([]string(nil), baseColumns...)
	for _, id := range providers {
		for _, criterion := range domain.RatingCriteria {
			header = append(header, id+" "+criterion)
		}
	}

	rows := make([][]string, 0, len(evaluations)+1)
	rows = append(rows, header)

	for _, e := range evaluations {
		row := []string{e.Prompt, e.GeneratedText, e.TargetLength, e.Style}
		for _, id := range providers {
			rating, ok := e.Ratings[id]
			if !ok {
				row = append(row, make([]string, len(domain.RatingCriteria))...)
				continue
			}
			row = append(row, scores(rating)...)
		}
		rows = append(rows, row)
	}

	return writeAll(w, rows)
}

// WriteEvaluation writes a single evaluation as Metric/Value pairs.
func WriteEvaluation(w io.Writer, e domain.Evaluation) error {
	rows := [][]string{
		{"Metric", "Value"},
		{"Original Prompt", e.Prompt},
		{"Generated Text", e.GeneratedText},
		{"Target Length", e.TargetLength},
		{"Style", e.Style},
	}

	ids := make([]string, 0, len(e.Ratings))
	for id := range e.Ratings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		values := scores(e.Ratings[id])
		for i, criterion := range domain.RatingCriteria {
			rows = append(rows, []string{fmt.Sprintf("%s %s rating", id, criterion), values[i]})
		}
	}

	return writeAll(w, rows)
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func providerIDs(evaluations []domain.Evaluation) []string {
	seen := make(map[string]struct{})
	for _, e := range evaluations {
		for id := range e.Ratings {
			seen[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// scores lists the rating values in domain.RatingCriteria order.
func scores(r domain.Rating) []string {
	return []string{
		strconv.Itoa(r.Clarity),
		strconv.Itoa(r.Relevance),
		strconv.Itoa(r.Coherence),
		strconv.Itoa(r.Creativity),
		strconv.Itoa(r.Overall),
	}
}
