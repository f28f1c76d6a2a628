// Package dto holds the data-transfer objects handed to the presentation
// process. They are flat values with no references back to the resources they
// were built from.
package dto

import "github.com/tailbits/halbridge/model"

// Models lists every DTO so schema references between them can be resolved.
func Models() []model.WithSchema {
	return []model.WithSchema{
		&Link{},
		&SystemInfo{},
		&User{},
		&Project{},
		&ProjectList{},
		&WorkPackage{},
		&WorkPackageList{},
		&Activity{},
		&TimeEntry{},
		&TimeEntryList{},
		&TimeEntryInput{},
		&SchemaAttribute{},
		&Schema{},
		&InvoiceRequest{},
		&InvoiceLine{},
		&Invoice{},
	}
}
