package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestRoutes(t *testing.T) {
	out, err := run(t, "routes")
	assert.NilError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Assert(t, len(lines) > 1)
	assert.Assert(t, is.Contains(lines[0], "PATTERN"))
	assert.Assert(t, is.Contains(out, "/time-entries/:id"))
	assert.Assert(t, is.Contains(out, "/invoices"))
}

func TestOpenAPI(t *testing.T) {
	out, err := run(t, "openapi", "--lint=false")
	assert.NilError(t, err)

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	assert.NilError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, doc.OpenAPI, "3.1.0")
	assert.Assert(t, is.Contains(doc.Paths, "/time-entries/{id}"))
}

func TestOpenAPI_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")

	out, err := run(t, "openapi", "--lint=false", "--out", path)
	assert.NilError(t, err)
	assert.Equal(t, out, "")

	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, json.Valid(b))
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Setenv("HALBRIDGE_BASE_URL", "")
	t.Setenv("HALBRIDGE_API_KEY", "")

	_, err := run(t, "serve", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestCall_UnsupportedVerb(t *testing.T) {
	_, err := run(t, "call", "TRACE", "/users")
	assert.ErrorContains(t, err, `unsupported verb "TRACE"`)
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "models match their schemas"))
}
