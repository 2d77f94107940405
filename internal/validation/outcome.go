package validation

import (
	"strings"

	"yelpcamp/internal/apperr"
)

// Separator joins field messages into one aggregated message.
const Separator = ","

// Outcome is either Valid or Invalid.
type Outcome interface {
	outcome()
}

// Valid means every rule passed.
type Valid struct{}

// Invalid lists every violated field.
type Invalid struct {
	Fields []FieldError
}

// FieldError is one violated rule.
type FieldError struct {
	Field   string
	Message string
}

func (Valid) outcome()   {}
func (Invalid) outcome() {}

// Message joins all field messages.
func (i Invalid) Message() string {
	msgs := make([]string, 0, len(i.Fields))
	for _, f := range i.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, Separator)
}

// Err converts the outcome into a 400 validation failure.
func (i Invalid) Err() error {
	return apperr.Validation(i.Message())
}

// merge prepends decode failures and drops rule failures on the same fields.
func merge(decode []FieldError, out Outcome) Outcome {
	var rules []FieldError
	if inv, ok := out.(Invalid); ok {
		rules = inv.Fields
	}
	if len(decode) == 0 && len(rules) == 0 {
		return Valid{}
	}
	seen := make(map[string]struct{}, len(decode))
	fields := make([]FieldError, 0, len(decode)+len(rules))
	for _, d := range decode {
		seen[d.Field] = struct{}{}
		fields = append(fields, d)
	}
	for _, r := range rules {
		if _, dup := seen[r.Field]; !dup {
			fields = append(fields, r)
		}
	}
	return Invalid{Fields: fields}
}
