// Package service holds the data services. Each service owns the routes of one
// domain area and turns routed requests into DTOs by fetching HAL resources
// and running them through the adapters.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tailbits/halbridge/model"
)

// Service registers its routes once, at startup.
type Service interface {
	SetRoutes(r *halbridge.Router)
}

// Deps are the collaborators shared by all services.
type Deps struct {
	Fetcher hal.Fetcher
	Log     logrus.FieldLogger
}

func (d Deps) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

// All builds every data service.
func All(deps Deps) []Service {
	return []Service{
		NewSystemInfo(deps),
		NewUsers(deps),
		NewProjects(deps),
		NewWorkPackages(deps),
		NewTimeEntries(deps),
		NewActivities(deps),
		NewInvoices(deps),
	}
}

// Register makes the DTO schemas available to the router and registers the
// routes of every service, in order.
func Register(r *halbridge.Router, services ...Service) {
	r.RegisterModel(dto.Models()...)
	for _, s := range services {
		s.SetRoutes(r)
	}
}

// send writes body to the remote server and parses the answer. Empty answers,
// as sent for deletions, yield a nil resource.
func send(ctx context.Context, f hal.Fetcher, method, href string, body any) (*hal.Resource, error) {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("service.send: %w", err)
		}
	}

	data, err := f.Send(ctx, method, href, raw)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	res, err := hal.Parse(data, f)
	if err != nil {
		return nil, &hal.RemoteFetchError{Href: href, Message: "malformed response", Err: err}
	}
	return res, nil
}

// paging translates the routed offset and page size into the server's query.
// Zero values leave the server defaults in place.
func paging(offset, pageSize int) url.Values {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	return q
}

func withFilters(q url.Values, filters hal.Filters) url.Values {
	if len(filters) > 0 {
		q.Set("filters", filters.String())
	}
	return q
}

// remoteID matches the ids and identifiers the remote server hands out.
var remoteID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// id reads a path parameter that addresses a remote resource.
func id(req *halbridge.Request, name string) (string, error) {
	v := req.Param(name)
	if v == "" {
		return "", fmt.Errorf("missing path parameter %q", name)
	}
	if err := checkID(name, v); err != nil {
		return "", err
	}
	return v, nil
}

func checkID(name, v string) error {
	if !remoteID.MatchString(v) {
		return model.NewValidationError(fmt.Sprintf("Attribute '%s' is not a valid id", name))
	}
	return nil
}
