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

type WorkPackages struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewWorkPackages(deps Deps) *WorkPackages {
	return &WorkPackages{fetcher: deps.Fetcher, log: deps.logger()}
}

type WorkPackagesQuery struct {
	Offset   int    `json:"offset"`
	PageSize int    `json:"pageSize"`
	Open     *bool  `json:"open"`
	Assignee string `json:"assignee"`
	Search   string `json:"search"`
}

func (s *WorkPackages) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("WorkPackages")

	g.Register(halbridge.HandleGet(s.list).
		Path("/projects/:id/work-packages").
		WithOpID("work-packages", "list").
		WithSummary("List the work packages of a project"))

	g.Register(halbridge.HandleGet(s.get).
		Path("/work-packages/:id").
		WithOpID("work-packages", "get").
		WithSummary("Get a work package"))
}

func (s *WorkPackages) list(ctx context.Context, req *halbridge.Request, q WorkPackagesQuery) (*dto.WorkPackageList, error) {
	projectID, err := id(req, "id")
	if err != nil {
		return nil, err
	}

	var filters hal.Filters
	if q.Open != nil {
		op := "o"
		if !*q.Open {
			op = "c"
		}
		filters = append(filters, hal.Filter{Name: "status_id", Operator: op})
	}
	if q.Assignee != "" {
		filters = append(filters, hal.Filter{Name: "assignee", Operator: "=", Values: []string{q.Assignee}})
	}
	if q.Search != "" {
		filters = append(filters, hal.Filter{Name: "subject_or_id", Operator: "**", Values: []string{q.Search}})
	}

	href := hal.WithQuery(hal.APIPath("projects", projectID, "work_packages"), withFilters(paging(q.Offset, q.PageSize), filters))
	res, err := hal.Get(ctx, s.fetcher, href)
	if err != nil {
		return nil, err
	}
	return adapter.WorkPackageList.AdaptResource(ctx, res)
}

func (s *WorkPackages) get(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.WorkPackage, error) {
	wpID, err := id(req, "id")
	if err != nil {
		return nil, err
	}

	res, err := hal.Get(ctx, s.fetcher, hal.APIPath("work_packages", wpID))
	if err != nil {
		return nil, err
	}
	return adapter.WorkPackage.ResourceToDTO(ctx, res)
}
