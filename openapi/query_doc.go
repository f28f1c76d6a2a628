package openapi

import (
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

var fieldDocCache sync.Map // reflect.Type -> map[string]string

// QueryParamDescriptions reads the doc comments of the fields of a query
// struct from its package source. A comment documents a field when it starts
// with the field name, as in "// Sort orders the page". Types whose source is
// not available yield no descriptions.
func QueryParamDescriptions(t reflect.Type) map[string]string {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return nil
	}

	if cached, ok := fieldDocCache.Load(t); ok {
		return cached.(map[string]string)
	}
	docs := parseFieldDocs(t.PkgPath(), t.Name())
	fieldDocCache.Store(t, docs)
	return docs
}

func parseFieldDocs(pkgPath, typeName string) map[string]string {
	docs := make(map[string]string)

	dir, ok := sourceDir(pkgPath)
	if !ok {
		return docs
	}

	pkgs, err := parser.ParseDir(token.NewFileSet(), dir, nil, parser.ParseComments)
	if err != nil {
		return docs
	}

	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			if st := findStruct(file, typeName); st != nil {
				for _, field := range st.Fields.List {
					if len(field.Names) == 0 {
						continue
					}
					name := field.Names[0].Name
					if desc := fieldDescription(name, field); desc != "" {
						docs[name] = desc
					}
				}
				return docs
			}
		}
	}
	return docs
}

func findStruct(file *ast.File, typeName string) *ast.StructType {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.Name.Name != typeName {
				continue
			}
			if st, ok := ts.Type.(*ast.StructType); ok {
				return st
			}
		}
	}
	return nil
}

// sourceDir locates the package directory, falling back from an external
// test package to the package under test.
func sourceDir(pkgPath string) (string, bool) {
	if pkgPath == "" {
		return "", false
	}
	for _, p := range []string{pkgPath, strings.TrimSuffix(pkgPath, "_test")} {
		if pkg, err := build.Default.Import(p, ".", build.FindOnly); err == nil {
			return pkg.Dir, true
		}
	}
	return "", false
}

func fieldDescription(name string, field *ast.Field) string {
	cg := field.Doc
	if cg == nil {
		cg = field.Comment
	}
	if cg == nil {
		return ""
	}

	text := strings.TrimSpace(cg.Text())
	if !strings.HasPrefix(text, name) {
		return ""
	}
	text = strings.TrimLeft(strings.TrimPrefix(text, name), ":-., \t")

	desc := strings.Join(strings.Fields(text), " ")
	r, size := utf8.DecodeRuneInString(desc)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + desc[size:]
}
