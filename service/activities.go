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

type Activities struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewActivities(deps Deps) *Activities {
	return &Activities{fetcher: deps.Fetcher, log: deps.logger()}
}

func (s *Activities) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("Activities")

	g.Register(halbridge.HandleGet(s.get).
		Path("/time-entries/activities/:id").
		WithOpID("activities", "get").
		WithSummary("Get a time entry activity"))
}

func (s *Activities) get(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.Activity, error) {
	activityID, err := id(req, "id")
	if err != nil {
		return nil, err
	}

	res, err := hal.Get(ctx, s.fetcher, hal.APIPath("time_entries", "activities", activityID))
	if err != nil {
		return nil, err
	}
	return adapter.Activity.ResourceToDTO(ctx, res)
}
