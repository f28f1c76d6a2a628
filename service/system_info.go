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

// SystemInfo describes the remote instance.
type SystemInfo struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewSystemInfo(deps Deps) *SystemInfo {
	return &SystemInfo{fetcher: deps.Fetcher, log: deps.logger()}
}

func (s *SystemInfo) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("SystemInfo")

	g.Register(halbridge.HandleGet(s.get).
		Path("/system-info").
		WithOpID("system-info", "get").
		WithSummary("Describe the remote instance"))
}

func (s *SystemInfo) get(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.SystemInfo, error) {
	root, err := hal.Get(ctx, s.fetcher, hal.APIRoot)
	if err != nil {
		return nil, err
	}
	return adapter.SystemInfo(ctx, root)
}
