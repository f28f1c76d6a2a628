package dto

import (
	"fmt"

	"github.com/tailbits/halbridge/jsonmerge"
)

// Page carries the paging attributes of a collection.
type Page struct {
	Total    int `json:"total"`
	Count    int `json:"count"`
	PageSize int `json:"pageSize"`
	Offset   int `json:"offset"`
}

// SetPage replaces the paging attributes.
func (p *Page) SetPage(pg Page) {
	*p = pg
}

var (
	pageSchema = []byte(`{
		"type": "object",
		"properties": {
			"total": {"type": "integer", "minimum": 0},
			"count": {"type": "integer", "minimum": 0},
			"pageSize": {"type": "integer", "minimum": 0},
			"offset": {"type": "integer", "minimum": 0}
		},
		"required": ["total", "count"]
	}`)
	pageExample = []byte(`{"total": 1, "count": 1, "pageSize": 20, "offset": 1}`)
)

func listSchema(element string) []byte {
	return jsonmerge.MustMerge(pageSchema, []byte(fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"elements": {"type": "array", "items": {"$ref": "#/definitions/%s"}}
		},
		"required": ["elements"]
	}`, element)))
}

func listExample(element []byte) []byte {
	return jsonmerge.MustMergeExamples(pageExample, []byte(fmt.Sprintf(`{"elements": [%s]}`, element)))
}
