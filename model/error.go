package model

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError describes a problem with one payload attribute. Field is the
// dotted path of the attribute, empty when the problem concerns the payload
// as a whole.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError collects the field errors of one rejected payload.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// Error renders the collected errors as a JSON document so the presentation
// process can show them per field.
func (ve ValidationError) Error() string {
	d, err := json.Marshal(ve)
	if err != nil {
		return err.Error()
	}
	return string(d)
}

// NewValidationError builds a ValidationError from plain messages.
func NewValidationError(messages ...string) ValidationError {
	ve := ValidationError{Errors: make([]FieldError, 0, len(messages))}
	for _, m := range messages {
		ve.Errors = append(ve.Errors, FieldError{Message: m})
	}
	return ve
}

// ToValidationError converts a failed gojsonschema result. Errors of the
// combinators (allOf, anyOf, oneOf) are dropped since their branches report
// the actual problem.
func ToValidationError(result *gojsonschema.Result) ValidationError {
	var ve ValidationError
	for _, res := range result.Errors() {
		switch res.(type) {
		case *gojsonschema.NumberAllOfError, *gojsonschema.NumberAnyOfError, *gojsonschema.NumberOneOfError:
			continue
		}

		field := fieldPath(res)
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: describe(field, res)})
	}

	SortErrors(&ve)
	return ve
}

// SortErrors orders errors by field, then message.
func SortErrors(e *ValidationError) {
	slices.SortFunc(e.Errors, func(a, b FieldError) int {
		return cmp.Or(cmp.Compare(a.Field, b.Field), cmp.Compare(a.Message, b.Message))
	})
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// fieldPath names the attribute a result error concerns. Required and
// additional property errors are reported on the parent object by
// gojsonschema, so the property is appended.
func fieldPath(res gojsonschema.ResultError) string {
	field := res.Field()
	if field == "(root)" {
		field = ""
	}

	switch res.(type) {
	case *gojsonschema.RequiredError, *gojsonschema.AdditionalPropertyNotAllowedError:
		prop, _ := res.Details()["property"].(string)
		if field == "" {
			return prop
		}
		return field + "." + prop
	}
	return field
}

func describe(field string, res gojsonschema.ResultError) string {
	d := res.Details()
	name := field
	if name == "" {
		name = "payload"
	}

	var msg string
	switch res.(type) {
	case *gojsonschema.RequiredError:
		msg = "is missing"
	case *gojsonschema.AdditionalPropertyNotAllowedError:
		msg = "is not a known attribute"
	case *gojsonschema.StringLengthGTEError:
		msg = "is too short"
	case *gojsonschema.StringLengthLTEError:
		msg = "is too long"
	case *gojsonschema.ArrayMinItemsError:
		msg = fmt.Sprintf("must contain at least %v items", d["min"])
	case *gojsonschema.ArrayMaxItemsError:
		msg = fmt.Sprintf("must contain at most %v items", d["max"])
	case *gojsonschema.InvalidTypeError:
		msg = fmt.Sprintf("should be of type %v", d["expected"])
	case *gojsonschema.DoesNotMatchPatternError:
		msg = fmt.Sprintf("should match pattern %v", d["pattern"])
	case *gojsonschema.DoesNotMatchFormatError:
		msg = fmt.Sprintf("should be a valid %v", d["format"])
	case *gojsonschema.NumberGTEError:
		msg = fmt.Sprintf("must be at least %v", d["min"])
	case *gojsonschema.NumberLTEError:
		msg = fmt.Sprintf("must be at most %v", d["max"])
	case *gojsonschema.EnumError:
		msg = fmt.Sprintf("must be one of %v", d["allowed"])
	default:
		return fmt.Sprintf("Attribute '%s': %s", name, strings.TrimSpace(res.Description()))
	}

	return fmt.Sprintf("Attribute '%s' %s", name, msg)
}
