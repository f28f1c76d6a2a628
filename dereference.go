package halbridge

import (
	"encoding/json"
	"fmt"

	"github.com/swaggest/jsonschema-go"
)

// DereferenceSchema copies every registered model that schema refers to,
// directly or through another model, into its definitions so the result
// validates on its own.
func (r *Router) DereferenceSchema(schema []byte) ([]byte, error) {
	var root jsonschema.Schema
	if err := json.Unmarshal(schema, &root); err != nil {
		return nil, fmt.Errorf("halbridge.DereferenceSchema: %w", err)
	}

	var inline func(sch *jsonschema.Schema) error
	inline = func(sch *jsonschema.Schema) error {
		var missing []string
		walkRefs(sch, func(ref *string) {
			missing = append(missing, refName(*ref))
		})

		for _, name := range missing {
			if _, ok := root.Definitions[name]; ok {
				continue
			}

			ent, ok := r.GetModel(name)
			if !ok {
				return fmt.Errorf("halbridge.DereferenceSchema: model %s not found", name)
			}

			var def jsonschema.Schema
			if err := json.Unmarshal(ent.Schema(), &def); err != nil {
				return fmt.Errorf("halbridge.DereferenceSchema: schema of %s: %w", name, err)
			}
			root.WithDefinitionsItem(name, def.ToSchemaOrBool())

			if err := inline(&def); err != nil {
				return err
			}
		}
		return nil
	}

	if err := inline(&root); err != nil {
		return nil, err
	}

	return json.Marshal(root)
}
