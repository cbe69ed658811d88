package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var (
	// ErrNoJSONObject indicates the payload contains no '{' ... '}' span.
	ErrNoJSONObject = errors.New("no JSON object found")

	// ErrMalformedJSON indicates the extracted span is not valid JSON.
	ErrMalformedJSON = errors.New("malformed JSON object")
)

// RatingCriteria lists the rating fields in display order.
//
//nolint:gochecknoglobals // read-only lookup table
var RatingCriteria = []string{"clarity", "relevance", "coherence", "creativity", "overall"}

// ratingSchema is the wire shape a provider must answer with.
type ratingSchema struct {
	Clarity    *float64 `json:"clarity"    validate:"required,integral,min=1,max=10"`
	Relevance  *float64 `json:"relevance"  validate:"required,integral,min=1,max=10"`
	Coherence  *float64 `json:"coherence"  validate:"required,integral,min=1,max=10"`
	Creativity *float64 `json:"creativity" validate:"required,integral,min=1,max=10"`
	Overall    *float64 `json:"overall"    validate:"required,integral,min=1,max=10"`
}

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var ratingValidator = newRatingValidator()

func newRatingValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("integral", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Float64 {
			return false
		}
		f := field.Float()
		return f == math.Trunc(f)
	}); err != nil {
		panic(err)
	}
	return v
}

// ExtractJSONObject returns the span from the first '{' to the last '}' in
// payload. The scan is greedy and brace-unaware: prose containing braces
// before or after the real object ends up inside the span and the result
// will then fail to parse.
func ExtractJSONObject(payload string) (string, bool) {
	start := strings.Index(payload, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(payload, "}")
	if end < start {
		return "", false
	}
	return payload[start : end+1], true
}

// NormalizeRating turns a provider's raw text answer into a validated Rating.
// Invalid values are rejected, never repaired.
func NormalizeRating(providerID, payload string) (Rating, error) {
	object, ok := ExtractJSONObject(payload)
	if !ok {
		return Rating{}, &ParseError{Provider: providerID, Payload: payload, Err: ErrNoJSONObject}
	}

	if !gjson.Valid(object) {
		return Rating{}, &ParseError{Provider: providerID, Payload: payload, Err: ErrMalformedJSON}
	}

	parsed := gjson.Parse(object)
	if !parsed.IsObject() {
		return Rating{}, &ParseError{Provider: providerID, Payload: payload, Err: ErrMalformedJSON}
	}

	var schema ratingSchema
	fields := map[string]**float64{
		"clarity":    &schema.Clarity,
		"relevance":  &schema.Relevance,
		"coherence":  &schema.Coherence,
		"creativity": &schema.Creativity,
		"overall":    &schema.Overall,
	}
	for _, name := range RatingCriteria {
		value := parsed.Get(name)
		if !value.Exists() {
			continue
		}
		if value.Type != gjson.Number {
			return Rating{}, &ValidationError{
				Provider: providerID,
				Field:    name,
				Object:   truncate(object, maxPayloadContext),
				Err:      fmt.Errorf("expected a number, got %s", value.Type),
			}
		}
		num := value.Num
		*fields[name] = &num
	}

	if err := ratingValidator.Struct(&schema); err != nil {
		return Rating{}, toValidationError(providerID, object, err)
	}

	return Rating{
		Clarity:    int(*schema.Clarity),
		Relevance:  int(*schema.Relevance),
		Coherence:  int(*schema.Coherence),
		Creativity: int(*schema.Creativity),
		Overall:    int(*schema.Overall),
	}, nil
}

func toValidationError(providerID, object string, err error) error {
	verr := &ValidationError{
		Provider: providerID,
		Object:   truncate(object, maxPayloadContext),
		Err:      err,
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		verr.Field = first.Field()
		verr.Err = fmt.Errorf("failed %q constraint", constraint(first))
	}
	return verr
}

func constraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "integral":
		return "integer"
	case "min", "max":
		return "range 1-10"
	default:
		return fe.Tag()
	}
}
