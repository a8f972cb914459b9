package todo

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Input limits.
const (
	MaxTextLength = 500
	MaxTags       = 16
	MaxTagLength  = 32
)

// todoValidate is the validator instance for service inputs.
var todoValidate = validator.New()

// input is the validated shape of user-supplied todo fields.
type input struct {
	Text string   `validate:"required,max=500"`
	Tags []string `validate:"max=16,dive,required,max=32"`
}

// validateInput checks in and converts validator failures into an *Error.
// When fields are given only those fields are checked.
func validateInput(in input, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = todoValidate.StructPartial(in, fields...)
	} else {
		err = todoValidate.Struct(in)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidf("%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, strings.ToLower(fe.Field())+" must not be empty")
		case "max":
			msgs = append(msgs, strings.ToLower(fe.Field())+" exceeds "+fe.Param())
		default:
			msgs = append(msgs, strings.ToLower(fe.Field())+" failed "+fe.Tag())
		}
	}
	return invalidf("%s", strings.Join(msgs, "; "))
}

// normalizeText trims surrounding whitespace and applies Unicode NFC so that
// visually identical texts compare equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalizeTags trims, lower-cases and de-duplicates tags, keeping the first
// occurrence order. Returns nil when no tags remain.
func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(normalizeText(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
