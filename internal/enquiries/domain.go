package enquiries

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Status enumerates enquiry states. The only transition is enquiry → active and
// it belongs to the booking converter.
type Status string

const (
	StatusEnquiry Status = "enquiry"
	StatusActive  Status = "active"
)

// Studio names the studio line taking the job.
type Studio string

const (
	StudioWedding Studio = "wedding"
	StudioBaby    Studio = "baby"
)

// Label is the customer-facing studio name.
func (s Studio) Label() string {
	return cases.Title(language.English).String(string(s)) + " Studio"
}

// Package is the closed set of package selections.
type Package string

const (
	PackageRegular Package = "regular"
	PackagePremium Package = "premium"
	PackageCustom  Package = "custom"
)

// Label renders the package for receipts and messages ("Premium").
func (p Package) Label() string {
	return cases.Title(language.English).String(string(p))
}

// DefaultCeremonies are covered by the regular and premium wedding packages.
var DefaultCeremonies = []string{"MEHENDI", "HALDI", "SANGEET", "WEDDING DAY"}

// CustomEvent is one function booked under a custom package.
type CustomEvent struct {
	Function string      `json:"function" validate:"required,max=80"`
	Date     shared.Date `json:"date"`
	Time     string      `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Service  string      `json:"service,omitempty" validate:"max=200"`
	Address  string      `json:"address,omitempty" validate:"max=300"`
}

// Events lists the functions a package covers. Wedding regular/premium packages
// expand to the default ceremonies; custom packages carry their own list.
func Events(studio Studio, pkg Package, custom []CustomEvent) []CustomEvent {
	switch pkg {
	case PackageCustom:
		out := make([]CustomEvent, len(custom))
		copy(out, custom)
		return out
	case PackageRegular, PackagePremium:
		if studio == StudioBaby {
			return nil
		}
		out := make([]CustomEvent, 0, len(DefaultCeremonies))
		for _, name := range DefaultCeremonies {
			out = append(out, CustomEvent{Function: name})
		}
		return out
	}
	return nil
}

// Enquiry is a prospective customer's request before any money changes hands.
type Enquiry struct {
	ID           uuid.UUID     `json:"id"`
	Studio       Studio        `json:"studio"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	Amount       money.Money   `json:"amount"`
	EventDate    shared.Date   `json:"event_date"`
	Package      Package       `json:"package"`
	CustomEvents []CustomEvent `json:"custom_events,omitempty"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Converted reports whether the enquiry already became a booking.
func (e Enquiry) Converted() bool { return e.Status != StatusEnquiry }

// CreateRequest is the intake form.
type CreateRequest struct {
	Studio       Studio        `json:"studio" validate:"omitempty,oneof=wedding baby"`
	Name         string        `json:"name" validate:"required,max=120"`
	Phone        string        `json:"phone" validate:"required,max=32"`
	Amount       money.Price   `json:"amount"`
	EventDate    shared.Date   `json:"event_date"`
	Package      Package       `json:"package" validate:"required,oneof=regular premium custom"`
	CustomEvents []CustomEvent `json:"custom_events" validate:"omitempty,dive"`
}

// UpdateRequest patches an enquiry; nil fields stay unchanged.
type UpdateRequest struct {
	Studio       *Studio        `json:"studio" validate:"omitempty,oneof=wedding baby"`
	Name         *string        `json:"name" validate:"omitempty,max=120"`
	Phone        *string        `json:"phone" validate:"omitempty,max=32"`
	Amount       *money.Price   `json:"amount"`
	EventDate    *shared.Date   `json:"event_date"`
	Package      *Package       `json:"package" validate:"omitempty,oneof=regular premium custom"`
	CustomEvents *[]CustomEvent `json:"custom_events" validate:"omitempty,dive"`
}

// listColumns whitelists filter and sort fields.
var listColumns = map[string]string{
	"name":       "name",
	"phone":      "phone",
	"studio":     "studio",
	"package":    "package",
	"status":     "status",
	"amount":     "amount",
	"event_date": "event_date",
	"created_at": "created_at",
}

// ListColumns exposes the filterable fields to handlers.
func ListColumns() map[string]string { return listColumns }
