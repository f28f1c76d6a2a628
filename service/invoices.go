package service

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/adapter"
	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tailbits/halbridge/model"
)

// invoicePageSize is the page size used to collect all entries of a period.
const invoicePageSize = 100

// Invoices prices the time logged on a project.
type Invoices struct {
	fetcher hal.Fetcher
	log     logrus.FieldLogger
}

func NewInvoices(deps Deps) *Invoices {
	return &Invoices{fetcher: deps.Fetcher, log: deps.logger()}
}

func (s *Invoices) SetRoutes(r *halbridge.Router) {
	g := r.NewRouteGroup("Invoices")

	g.Register(halbridge.HandlePost(s.create).
		Path("/invoices").
		WithOpID("invoices", "create").
		WithSummary("Build an invoice from logged time").
		WithDesc("Collects every time entry of the project in the inclusive date range, ordered by work package and date, and prices it at the hourly rate."))
}

func (s *Invoices) create(ctx context.Context, req *halbridge.Request, in *dto.InvoiceRequest, _ model.Nil) (*dto.Invoice, error) {
	if in.To.Before(in.From) {
		return nil, model.NewValidationError("Attribute 'to' must not be before 'from'")
	}
	if err := checkID("project", in.Project); err != nil {
		return nil, err
	}

	projectRes, err := hal.Get(ctx, s.fetcher, hal.APIPath("projects", in.Project))
	if err != nil {
		return nil, err
	}
	project, err := adapter.Project.ResourceToDTO(ctx, projectRes)
	if err != nil {
		return nil, err
	}

	entries, err := s.collect(ctx, timeEntryFilters(in.Project, "", "", in.From, in.To))
	if err != nil {
		return nil, err
	}
	dto.SortTimeEntries(entries, dto.ByWorkPackage, dto.BySpentOn)

	inv := &dto.Invoice{
		Project:    adapter.ToLink(hal.Link{Href: projectRes.Href(), Title: project.DisplayName}),
		From:       in.From,
		To:         in.To,
		Currency:   in.Currency,
		HourlyRate: in.HourlyRate,
		Lines:      make([]dto.InvoiceLine, 0, len(entries)),
	}
	for _, e := range entries {
		line := dto.InvoiceLine{
			Date:        e.SpentOn,
			WorkPackage: e.WorkPackage,
			User:        e.User.Title,
			Comment:     e.Comment,
			Hours:       e.Hours,
			Amount:      cents(e.Hours * in.HourlyRate),
		}
		if e.Activity != nil {
			line.Activity = e.Activity.DisplayName
		}
		inv.Lines = append(inv.Lines, line)
		inv.TotalHours += e.Hours
		inv.TotalAmount += line.Amount
	}
	inv.TotalAmount = cents(inv.TotalAmount)

	s.log.WithFields(logrus.Fields{
		"project": project.Identifier,
		"lines":   len(inv.Lines),
		"hours":   inv.TotalHours,
	}).Info("invoice built")

	return inv, nil
}

// collect pages through all matching time entries. The server may cap the
// page size below invoicePageSize; later pages are requested at its size.
func (s *Invoices) collect(ctx context.Context, filters hal.Filters) ([]dto.TimeEntry, error) {
	var entries []dto.TimeEntry
	size := invoicePageSize
	for offset := 1; ; offset++ {
		page, err := listTimeEntries(ctx, s.fetcher, filters, offset, size)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page.Elements...)

		if len(page.Elements) == 0 || len(entries) >= page.Total {
			return entries, nil
		}
		if page.PageSize > 0 && page.PageSize < size {
			size = page.PageSize
		}
		if offset*size >= page.Total {
			return nil, errors.New("service.Invoices: server reported more entries than it paged")
		}
	}
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
