package adapter

import (
	"context"
	"fmt"

	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
)

// EntityAdapter converts one resource into a DTO.
type EntityAdapter[D any] interface {
	ResourceToDTO(ctx context.Context, res *hal.Resource) (*D, error)
}

// Entity adapts resources of one _type through a mapping table. An empty Kind
// accepts any type.
type Entity[D any] struct {
	Kind    string
	Mapping Mapping[D]
}

var _ EntityAdapter[dto.Link] = Entity[dto.Link]{}

func (e Entity[D]) ResourceToDTO(ctx context.Context, res *hal.Resource) (*D, error) {
	var d D
	if err := e.Into(ctx, res, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Into adapts res onto an existing DTO, for DTOs assembled from several
// resources.
func (e Entity[D]) Into(ctx context.Context, res *hal.Resource, dst *D) error {
	if res == nil {
		return &MalformedResourceError{Attribute: "_type", Err: fmt.Errorf("no resource to adapt")}
	}
	if e.Kind != "" && res.Type() != e.Kind {
		return &MalformedResourceError{
			URI:       res.Href(),
			Attribute: "_type",
			Err:       fmt.Errorf("expected %s, got %q", e.Kind, res.Type()),
		}
	}

	return e.Mapping.Apply(ctx, res, dst)
}

// List is a concrete DTO list that elements are appended to.
type List[D any] interface {
	Append(D)
	SetPage(dto.Page)
}

// AdaptCollection adapts every element of col, in server order, into a list
// built fresh by create.
func AdaptCollection[D any, L List[D]](ctx context.Context, col *hal.Collection, element EntityAdapter[D], create func() L) (L, error) {
	list := create()
	list.SetPage(dto.Page{
		Total:    col.Total(),
		Count:    col.Count(),
		PageSize: col.PageSize(),
		Offset:   col.Offset(),
	})

	for i, el := range col.Elements() {
		d, err := element.ResourceToDTO(ctx, el)
		if err != nil {
			var zero L
			return zero, fmt.Errorf("adapter: element %d of %s: %w", i, col.Href(), err)
		}
		list.Append(*d)
	}

	return list, nil
}

// Collection pairs an element adapter with the factory of its list type.
type Collection[D any, L List[D]] struct {
	Element       EntityAdapter[D]
	CreateDTOList func() L
}

func (c Collection[D, L]) ResourceToDTO(ctx context.Context, col *hal.Collection) (L, error) {
	return AdaptCollection(ctx, col, c.Element, c.CreateDTOList)
}

// AdaptResource checks that res is a collection and adapts it.
func (c Collection[D, L]) AdaptResource(ctx context.Context, res *hal.Resource) (L, error) {
	col, err := hal.AsCollection(res)
	if err != nil {
		var zero L
		return zero, &MalformedResourceError{URI: hrefOf(res), Attribute: "_type", Err: err}
	}
	return c.ResourceToDTO(ctx, col)
}

func hrefOf(res *hal.Resource) string {
	if res == nil {
		return ""
	}
	return res.Href()
}
