package job

import (
	"strings"

	"github.com/rpggio/freightline/internal/domain/editgrant"
)

// EditableFields are the job fields an approved edit may change.
var EditableFields = map[string]struct{}{
	"shipper":           {},
	"consignee":         {},
	"origin":            {},
	"destination":       {},
	"cargo_description": {},
	"client_name":       {},
	"client_email":      {},
	"notes":             {},
}

// Apply writes changes into f. Changes must already be validated.
func (f *Fields) Apply(changes editgrant.Changes) {
	for name, value := range changes {
		value = strings.TrimSpace(value)
		switch name {
		case "shipper":
			f.Shipper = value
		case "consignee":
			f.Consignee = value
		case "origin":
			f.Origin = value
		case "destination":
			f.Destination = value
		case "cargo_description":
			f.CargoDescription = value
		case "client_name":
			f.ClientName = value
		case "client_email":
			f.ClientEmail = value
		case "notes":
			f.Notes = value
		}
	}
}
