package model

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrBodyEmpty occurs when a payload was required but none was sent.
var ErrBodyEmpty = errors.New("body empty")

// Validate checks body against the JSON schema document.
func Validate(schemaDoc []byte, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("model.Validate: %w %w", NewValidationError("body is empty"), ErrBodyEmpty)
	}

	doc := gojsonschema.NewBytesLoader(schemaDoc)
	sch, err := gojsonschema.NewSchema(doc)
	if err != nil {
		return fmt.Errorf("gojsonschema.NewSchema: %w", err)
	}

	return validateWith(sch, gojsonschema.NewBytesLoader(body))
}

// ValidateValue checks an already decoded value (maps, slices, structs) against
// the JSON schema document.
func ValidateValue(schemaDoc []byte, value any) error {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaDoc))
	if err != nil {
		return fmt.Errorf("gojsonschema.NewSchema: %w", err)
	}

	return validateWith(sch, gojsonschema.NewGoLoader(value))
}

func validateWith(sch *gojsonschema.Schema, doc gojsonschema.JSONLoader) error {
	res, err := sch.Validate(doc)
	if err != nil {
		return fmt.Errorf("json schema validate: %w", err)
	}

	if !res.Valid() {
		return ToValidationError(res)
	}

	return nil
}
