package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/adapter"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tailbits/halbridge/model"
)

type Projects struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewProjects(deps Deps) *Projects {
	return &Projects{fetcher: deps.Fetcher, log: deps.logger()}
}

type ProjectsQuery struct {
	Offset   int    `json:"offset"`
	PageSize int    `json:"pageSize"`
	Active   *bool  `json:"active"`
	Search   string `json:"search"`
}

func (s *Projects) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("Projects")

	g.Register(halbridge.HandleGet(s.list).
		Path("/projects").
		WithOpID("projects", "list").
		WithSummary("List visible projects"))

	g.Register(halbridge.HandleGet(s.get).
		Path("/projects/:id").
		WithOpID("projects", "get").
		WithSummary("Get a project by id or identifier"))
}

func (s *Projects) list(ctx context.Context, req *halbridge.Request, q ProjectsQuery) (*dto.ProjectList, error) {
	var filters hal.Filters
	if q.Active != nil {
		filters = append(filters, hal.Filter{Name: "active", Operator: "=", Values: []string{boolValue(*q.Active)}})
	}
	if q.Search != "" {
		filters = append(filters, hal.Filter{Name: "name_and_identifier", Operator: "~", Values: []string{q.Search}})
	}

	href := hal.WithQuery(hal.APIPath("projects"), withFilters(paging(q.Offset, q.PageSize), filters))
	res, err := hal.Get(ctx, s.fetcher, href)
	if err != nil {
		return nil, err
	}
	return adapter.ProjectList.AdaptResource(ctx, res)
}

func (s *Projects) get(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.Project, error) {
	projectID, err := id(req, "id")
	if err != nil {
		return nil, err
	}

	res, err := hal.Get(ctx, s.fetcher, hal.APIPath("projects", projectID))
	if err != nil {
		return nil, err
	}
	return adapter.Project.ResourceToDTO(ctx, res)
}

func boolValue(b bool) string {
	if b {
		return "t"
	}
	return "f"
}
