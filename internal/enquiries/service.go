package enquiries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sanctified-studios/studio/internal/messaging"
	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/shared"
)

// ErrAmountFrozen rejects changing the quoted amount of a converted enquiry; the
// booking total has become the reference.
var ErrAmountFrozen = shared.ValidationError{Field: "amount", Msg: "enquiry already converted; edit the booking total instead"}

// Service handles enquiry intake and edits.
type Service struct {
	repo           Repository
	validate       *validator.Validate
	defaultCountry string
	now            func() time.Time
}

// NewService constructs the service. defaultCountry prefixes ten digit phone numbers.
func NewService(repo Repository, defaultCountry string) *Service {
	return &Service{
		repo:           repo,
		validate:       shared.NewValidator(),
		defaultCountry: defaultCountry,
		now:            time.Now,
	}
}

// Create validates the intake form and stores a new enquiry.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Enquiry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return Enquiry{}, err
	}
	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return Enquiry{}, err
	}
	amount, err := shared.PriceField("amount", req.Amount)
	if err != nil {
		return Enquiry{}, err
	}
	if req.EventDate.IsZero() {
		return Enquiry{}, shared.ValidationError{Field: "event_date", Msg: "required"}
	}
	events, err := checkEvents(req.Package, req.CustomEvents)
	if err != nil {
		return Enquiry{}, err
	}
	studio := req.Studio
	if studio == "" {
		studio = StudioWedding
	}

	now := s.now().UTC()
	e := Enquiry{
		ID:           uuid.New(),
		Studio:       studio,
		Name:         req.Name,
		Phone:        phone,
		Amount:       amount,
		EventDate:    req.EventDate,
		Package:      req.Package,
		CustomEvents: events,
		Status:       StatusEnquiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Enquiry{}, err
	}
	return e, nil
}

// Get loads one enquiry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Enquiry, error) {
	return s.repo.Get(ctx, id)
}

// List returns enquiries matching q.
func (s *Service) List(ctx context.Context, q shared.ListQuery) ([]Enquiry, error) {
	return s.repo.List(ctx, q)
}

// Update patches an enquiry. Once converted, the quoted amount is frozen because
// the booking total has become the reference.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (Enquiry, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return Enquiry{}, err
	}
	var amount *money.Money
	if req.Amount != nil {
		m, err := shared.PriceField("amount", *req.Amount)
		if err != nil {
			return Enquiry{}, err
		}
		amount = &m
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Enquiry{}, err
	}
	if amount != nil && e.Converted() && *amount != e.Amount {
		return Enquiry{}, ErrAmountFrozen
	}

	if req.Studio != nil {
		e.Studio = *req.Studio
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Enquiry{}, shared.ValidationError{Field: "name", Msg: "required"}
		}
		e.Name = name
	}
	if req.Phone != nil {
		phone, err := s.normalizePhone(*req.Phone)
		if err != nil {
			return Enquiry{}, err
		}
		e.Phone = phone
	}
	if amount != nil {
		e.Amount = *amount
	}
	if req.EventDate != nil {
		if req.EventDate.IsZero() {
			return Enquiry{}, shared.ValidationError{Field: "event_date", Msg: "required"}
		}
		e.EventDate = *req.EventDate
	}
	if req.Package != nil {
		e.Package = *req.Package
	}
	if req.CustomEvents != nil {
		e.CustomEvents = *req.CustomEvents
	}
	events, err := checkEvents(e.Package, e.CustomEvents)
	if err != nil {
		return Enquiry{}, err
	}
	e.CustomEvents = events
	e.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, e)
}

// Delete removes an enquiry. Bookings converted from it keep their data.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) normalizePhone(raw string) (string, error) {
	phone, err := messaging.NormalizePhone(raw, s.defaultCountry)
	if err != nil {
		return "", err
	}
	if err := s.validate.Var(phone, "e164"); err != nil {
		return "", shared.ValidationError{Field: "phone", Msg: "must be an international phone number"}
	}
	return phone, nil
}

// checkEvents keeps custom events only for custom packages and requires each
// one to name a function and a date.
func checkEvents(pkg Package, events []CustomEvent) ([]CustomEvent, error) {
	if pkg != PackageCustom {
		return nil, nil
	}
	if len(events) == 0 {
		return nil, shared.ValidationError{Field: "custom_events", Msg: "custom package needs at least one event"}
	}
	out := make([]CustomEvent, 0, len(events))
	for i, ev := range events {
		ev.Function = strings.TrimSpace(ev.Function)
		if ev.Function == "" {
			return nil, shared.ValidationError{Field: fmt.Sprintf("custom_events[%d].function", i), Msg: "required"}
		}
		if ev.Date.IsZero() {
			return nil, shared.ValidationError{Field: fmt.Sprintf("custom_events[%d].date", i), Msg: "required"}
		}
		out = append(out, ev)
	}
	return out, nil
}
