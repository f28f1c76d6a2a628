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

type Users struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewUsers(deps Deps) *Users {
	return &Users{fetcher: deps.Fetcher, log: deps.logger()}
}

// SetRoutes registers /users/me ahead of /users/:id so that it is not
// captured by the parameter.
func (s *Users) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("Users")

	g.Register(halbridge.HandleGet(s.me).
		Path("/users/me").
		WithOpID("users", "me").
		WithSummary("The authenticated user"))

	g.Register(halbridge.HandleGet(s.get).
		Path("/users/:id").
		WithOpID("users", "get").
		WithSummary("Get a user"))
}

func (s *Users) me(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.User, error) {
	return s.fetch(ctx, "me")
}

func (s *Users) get(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.User, error) {
	userID, err := id(req, "id")
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, userID)
}

func (s *Users) fetch(ctx context.Context, userID string) (*dto.User, error) {
	res, err := hal.Get(ctx, s.fetcher, hal.APIPath("users", userID))
	if err != nil {
		return nil, err
	}
	return adapter.User.ResourceToDTO(ctx, res)
}
