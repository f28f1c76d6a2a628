package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/daveshanley/vacuum/model"
	"github.com/daveshanley/vacuum/motor"
	"github.com/daveshanley/vacuum/rulesets"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi31"
	"github.com/tailbits/halbridge"
)

type definitionsMap map[string]jsonschema.Schema

type generator struct {
	reflector *openapi31.Reflector
	cfg       config
	defs      definitionsMap
	tags      map[string]bool
}

func newGenerator(cfg config) *generator {
	reflector := openapi31.NewReflector()
	reflector.Spec = &openapi31.Spec{Openapi: "3.1.0"}
	reflector.Spec.Info.
		WithTitle(cfg.info.Title).
		WithVersion(cfg.info.Version).
		WithDescription(cfg.info.Description)
	if cfg.info.ServerURL != "" {
		reflector.Spec.WithServers(openapi31.Server{URL: cfg.info.ServerURL})
	}

	reflector.Reflector.DefaultOptions = append(reflector.Reflector.DefaultOptions, jsonschema.DefinitionsPrefix("#/components/schemas/"))

	return &generator{
		reflector: reflector,
		cfg:       cfg,
		defs:      make(definitionsMap),
		tags:      make(map[string]bool),
	}
}

// document renders records and the collected definitions.
func (g *generator) document(records []Record) ([]byte, error) {
	if err := g.ingest(records); err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}

	tags := make([]string, 0, len(g.tags))
	for tag := range g.tags {
		tags = append(tags, tag)
	}
	for _, tag := range g.cfg.allTags {
		if !g.tags[tag] {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	g.collectTags(tags)

	if err := g.collectDefinitions(); err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}

	if g.cfg.lint {
		if err := g.lint(); err != nil {
			return nil, fmt.Errorf("openapi: %w", err)
		}
	}

	return g.marshalJSON()
}

func (g *generator) ingest(records []Record) error {
	for _, record := range records {
		oc, err := g.reflector.NewOperationContext(record.Method, record.Path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", record.Method, record.Path, err)
		}

		ctx := newOperationContext(oc, g)
		if err := ctx.from(record); err != nil {
			return fmt.Errorf("%s %s: %w", record.Method, record.Path, err)
		}
		if err := ctx.commit(); err != nil {
			return fmt.Errorf("%s %s: %w", record.Method, record.Path, err)
		}
	}

	return nil
}

// lint applies vacuum's recommended ruleset and fails on schema violations.
func (g *generator) lint() error {
	spec, err := g.marshalJSON()
	if err != nil {
		return err
	}

	recommended := rulesets.BuildDefaultRuleSets().GenerateOpenAPIRecommendedRuleSet()
	results := motor.ApplyRulesToRuleSet(&motor.RuleSetExecution{
		RuleSet: recommended,
		Spec:    spec,
	})

	resultSet := model.NewRuleResultSet(results.Results)
	resultSet.SortResultsByLineNumber()

	var violations []string
	for _, ruleResult := range resultSet.GetRuleResultsForCategory("schemas").RuleResults {
		for _, v := range ruleResult.Results {
			violations = append(violations, fmt.Sprintf("[%d:%d] %s", v.StartNode.Line, v.StartNode.Column, v.Message))
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("lint failed:\n - %s", strings.Join(violations, "\n - "))
	}
	return nil
}

func (g *generator) marshalJSON() ([]byte, error) {
	return g.reflector.Spec.MarshalJSON()
}

// collectDefinitions commits the cached definitions to the components section.
// Names differing only in case are rejected: they collide on case-insensitive
// file systems of generated clients.
func (g *generator) collectDefinitions() error {
	seen := make(map[string]string)
	for name := range g.defs {
		normalized := strings.ToLower(name)
		if orig, exists := seen[normalized]; exists {
			return fmt.Errorf("conflicting definitions: %q and %q", orig, name)
		}
		seen[normalized] = name
	}

	for name, def := range g.defs {
		def.Definitions = nil
		sm, err := def.ToSchemaOrBool().ToSimpleMap()
		if err != nil {
			return fmt.Errorf("definition %s: %w", name, err)
		}
		g.reflector.Spec.ComponentsEns().WithSchemasItem(name, sm)
	}

	return nil
}

func (g *generator) collectTags(tags []string) {
	g.reflector.Spec.Tags = make([]openapi31.Tag, len(tags))
	for i, tag := range tags {
		g.reflector.Spec.Tags[i] = openapi31.Tag{Name: tag}
	}
}

func (g *generator) addModel(m halbridge.Model) error {
	if m.IsNil() {
		return nil
	}

	schema, err := m.JSONSchema()
	if err != nil {
		return err
	}

	return g.addDefinition(m.Name(), schema)
}

// addDefinition caches schema under name. A name seen before must carry an
// identical schema, examples aside.
func (g *generator) addDefinition(name string, schema jsonschema.Schema) error {
	if name == "" {
		return fmt.Errorf("definition name cannot be empty")
	}

	if existing, ok := g.defs[name]; ok {
		if !g.identical(name, existing, schema) {
			return fmt.Errorf("definition with name [%s] already exists but with a different definition", name)
		}
		if len(existing.Examples) > 0 && len(schema.Examples) == 0 {
			return nil
		}
	}
	g.defs[name] = schema

	for nested, def := range schema.Definitions {
		if def.TypeObject != nil {
			if err := g.addDefinition(nested, *def.TypeObject); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *generator) identical(name string, a, b jsonschema.Schema) bool {
	a.Examples = nil
	b.Examples = nil

	aa, _ := a.MarshalJSON()
	bb, _ := b.MarshalJSON()
	if string(aa) == string(bb) {
		return true
	}

	g.cfg.log.WithField("definition", name).Warnf("conflicting definitions:\n%s", diff(aa, bb))
	return false
}

func diff(a, b []byte) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(pretty(a)), string(pretty(b)), false)
	return dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs))
}

func pretty(schema []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, schema, "", "  "); err != nil {
		return schema
	}
	return buf.Bytes()
}
