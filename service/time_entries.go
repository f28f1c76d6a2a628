package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/adapter"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tailbits/halbridge/model"
)

type TimeEntries struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewTimeEntries(deps Deps) *TimeEntries {
	return &TimeEntries{fetcher: deps.Fetcher, log: deps.logger()}
}

type TimeEntriesQuery struct {
	Offset      int        `json:"offset"`
	PageSize    int        `json:"pageSize"`
	Project     string     `json:"project"`
	WorkPackage string     `json:"workPackage"`
	User        string     `json:"user"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	// Sort orders the page locally: spentOn, hours, project, workPackage or
	// createdAt, optionally prefixed with "-" for descending order.
	Sort []string `json:"sort"`
}

// SetRoutes registers /time-entries/schema ahead of /time-entries/:id, which
// would otherwise capture it.
func (s *TimeEntries) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("TimeEntries")

	g.Register(halbridge.HandleGet(s.list).
		Path("/time-entries").
		WithOpID("time-entries", "list").
		WithSummary("List time entries"))

	g.Register(halbridge.HandleGet(s.schema).
		Path("/time-entries/schema").
		WithOpID("time-entries", "schema").
		WithSummary("Describe the attributes of a time entry"))

	g.Register(halbridge.HandleGet(s.get).
		Path("/time-entries/:id").
		WithOpID("time-entries", "get").
		WithSummary("Get a time entry"))

	g.Register(halbridge.HandlePost(s.create).
		Path("/time-entries").
		WithOpID("time-entries", "create").
		WithSummary("Log time"))

	g.Register(halbridge.HandlePatch(s.update).
		Path("/time-entries/:id").
		WithOpID("time-entries", "update").
		WithSummary("Change a time entry"))

	g.Register(halbridge.HandleDelete(s.delete).
		Path("/time-entries/:id").
		WithOpID("time-entries", "delete").
		WithSummary("Delete a time entry"))
}

func (s *TimeEntries) list(ctx context.Context, req *halbridge.Request, q TimeEntriesQuery) (*dto.TimeEntryList, error) {
	keys, err := sortKeys(q.Sort)
	if err != nil {
		return nil, err
	}

	var from, to dto.Date
	if q.From != nil {
		from = dto.AsDate(*q.From)
	}
	if q.To != nil {
		to = dto.AsDate(*q.To)
	}

	list, err := listTimeEntries(ctx, s.fetcher, timeEntryFilters(q.Project, q.WorkPackage, q.User, from, to), q.Offset, q.PageSize)
	if err != nil {
		return nil, err
	}
	// Without sort keys entries come back by spent-on date.
	dto.SortTimeEntries(list.Elements, keys...)
	return list, nil
}

func (s *TimeEntries) schema(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.Schema, error) {
	return timeEntrySchema(ctx, s.fetcher)
}

func (s *TimeEntries) get(ctx context.Context, req *halbridge.Request, _ model.Nil) (*dto.TimeEntry, error) {
	entryID, err := id(req, "id")
	if err != nil {
		return nil, err
	}

	res, err := hal.Get(ctx, s.fetcher, hal.APIPath("time_entries", entryID))
	if err != nil {
		return nil, err
	}
	return adapter.TimeEntry.ResourceToDTO(ctx, res)
}

func (s *TimeEntries) create(ctx context.Context, req *halbridge.Request, in *dto.TimeEntryInput, _ model.Nil) (*dto.TimeEntry, error) {
	return s.write(ctx, http.MethodPost, hal.APIPath("time_entries"), in, false)
}

func (s *TimeEntries) update(ctx context.Context, req *halbridge.Request, in *dto.TimeEntryInput, _ model.Nil) (*dto.TimeEntry, error) {
	entryID, err := id(req, "id")
	if err != nil {
		return nil, err
	}
	return s.write(ctx, http.MethodPatch, hal.APIPath("time_entries", entryID), in, true)
}

func (s *TimeEntries) delete(ctx context.Context, req *halbridge.Request, _ model.Nil) (model.Nil, error) {
	entryID, err := id(req, "id")
	if err != nil {
		return model.Nil{}, err
	}

	if _, err := send(ctx, s.fetcher, http.MethodDelete, hal.APIPath("time_entries", entryID), nil); err != nil {
		return model.Nil{}, err
	}
	s.log.WithField("time_entry", entryID).Info("time entry deleted")

	return model.Nil{}, nil
}

// write validates the payload against the server's current time entry schema
// before sending it, so that constraint violations are reported per field.
func (s *TimeEntries) write(ctx context.Context, method, href string, in *dto.TimeEntryInput, partial bool) (*dto.TimeEntry, error) {
	schema, err := timeEntrySchema(ctx, s.fetcher)
	if err != nil {
		return nil, err
	}

	body := timeEntryBody(in)
	doc, err := schema.PayloadSchemaJSON(partial)
	if err != nil {
		return nil, fmt.Errorf("service.TimeEntries: payload schema: %w", err)
	}
	if err := model.ValidateValue(doc, body); err != nil {
		return nil, err
	}

	res, err := send(ctx, s.fetcher, method, href, body)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &hal.RemoteFetchError{Href: href, Message: "empty response"}
	}

	entry, err := adapter.TimeEntry.ResourceToDTO(ctx, res)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"time_entry": entry.ID, "method": method}).Info("time entry saved")

	return entry, nil
}

func timeEntrySchema(ctx context.Context, f hal.Fetcher) (*dto.Schema, error) {
	res, err := hal.Get(ctx, f, hal.APIPath("time_entries", "schema"))
	if err != nil {
		return nil, err
	}
	sch, err := hal.AsSchema(res)
	if err != nil {
		return nil, &adapter.MalformedResourceError{URI: res.Href(), Attribute: "_type", Err: err}
	}
	return adapter.AdaptSchema(sch)
}

// timeEntryBody builds the HAL request body. Zero fields are left out.
func timeEntryBody(in *dto.TimeEntryInput) map[string]any {
	body := map[string]any{}
	links := map[string]any{}

	if in.Project != "" {
		links["project"] = map[string]any{"href": hal.APIPath("projects", in.Project)}
	}
	if in.WorkPackage != "" {
		links["workPackage"] = map[string]any{"href": hal.APIPath("work_packages", in.WorkPackage)}
	}
	if in.Activity != "" {
		links["activity"] = map[string]any{"href": hal.APIPath("time_entries", "activities", in.Activity)}
	}
	if !in.SpentOn.IsZero() {
		body["spentOn"] = in.SpentOn.String()
	}
	if in.Hours > 0 {
		body["hours"] = hal.FormatDuration(hal.Hours(in.Hours))
	}
	if in.Comment != nil {
		body["comment"] = map[string]any{"raw": *in.Comment}
	}
	if len(links) > 0 {
		body["_links"] = links
	}

	return body
}

func timeEntryFilters(project, workPackage, user string, from, to dto.Date) hal.Filters {
	var filters hal.Filters
	if project != "" {
		filters = append(filters, hal.Filter{Name: "project", Operator: "=", Values: []string{project}})
	}
	if workPackage != "" {
		filters = append(filters, hal.Filter{Name: "work_package", Operator: "=", Values: []string{workPackage}})
	}
	if user != "" {
		filters = append(filters, hal.Filter{Name: "user", Operator: "=", Values: []string{user}})
	}
	if !from.IsZero() || !to.IsZero() {
		filters = append(filters, hal.Filter{Name: "spent_on", Operator: "<>d", Values: []string{from.String(), to.String()}})
	}
	return filters
}

func listTimeEntries(ctx context.Context, f hal.Fetcher, filters hal.Filters, offset, pageSize int) (*dto.TimeEntryList, error) {
	href := hal.WithQuery(hal.APIPath("time_entries"), withFilters(paging(offset, pageSize), filters))
	res, err := hal.Get(ctx, f, href)
	if err != nil {
		return nil, err
	}
	return adapter.TimeEntryList.AdaptResource(ctx, res)
}

var sortKeysByName = map[string]dto.SortKey{
	"spentOn":     dto.BySpentOn,
	"hours":       dto.ByHours,
	"project":     dto.ByProject,
	"workPackage": dto.ByWorkPackage,
	"createdAt":   dto.ByCreatedAt,
}

func sortKeys(names []string) ([]dto.SortKey, error) {
	keys := make([]dto.SortKey, 0, len(names))
	for _, name := range names {
		desc := strings.HasPrefix(name, "-")
		key, ok := sortKeysByName[strings.TrimPrefix(name, "-")]
		if !ok {
			return nil, fmt.Errorf("unknown sort key %q", name)
		}
		if desc {
			key = dto.Desc(key)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
