package halbridge

import (
	"github.com/tailbits/halbridge/model"
)

func HandlePost[I model.Entity, O model.Entity, Q any](handler HandlerWithBody[I, O, Q]) *RouteBuilderWithBody[I, O, Q] {
	return newBuilderWithBody(VerbPost, handler)
}

func HandlePut[I model.Entity, O model.Entity, Q any](handler HandlerWithBody[I, O, Q]) *RouteBuilderWithBody[I, O, Q] {
	return newBuilderWithBody(VerbPut, handler)
}

func HandlePatch[I model.Entity, O model.Entity, Q any](handler HandlerWithBody[I, O, Q]) *RouteBuilderWithBody[I, O, Q] {
	return newBuilderWithBody(VerbPatch, handler)
}

func HandleGet[O model.Entity, Q any](handler HandlerNoBody[O, Q]) *RouteBuilderNoBody[O, Q] {
	return newBuilderNoBody(VerbGet, handler)
}

// HandleDelete builds a DELETE route. Deletes carry no payload.
func HandleDelete[O model.Entity, Q any](handler HandlerNoBody[O, Q]) *RouteBuilderNoBody[O, Q] {
	return newBuilderNoBody(VerbDelete, handler)
}
