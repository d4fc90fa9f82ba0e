package enquiries

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/shared"
)

type memoryRepo struct {
	items map[uuid.UUID]Enquiry
	// beforeUpdate runs between the service's read and its write.
	beforeUpdate func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[uuid.UUID]Enquiry)}
}

func (r *memoryRepo) Create(_ context.Context, e Enquiry) error {
	r.items[e.ID] = e
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (Enquiry, error) {
	e, ok := r.items[id]
	if !ok {
		return Enquiry{}, shared.NotFoundError{Resource: "enquiry", ID: id.String()}
	}
	return e, nil
}

func (r *memoryRepo) List(_ context.Context, _ shared.ListQuery) ([]Enquiry, error) {
	var out []Enquiry
	for _, e := range r.items {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, e Enquiry) (Enquiry, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	stored, ok := r.items[e.ID]
	if !ok {
		return Enquiry{}, shared.NotFoundError{Resource: "enquiry", ID: e.ID.String()}
	}
	if stored.Status != StatusEnquiry && stored.Amount != e.Amount {
		return Enquiry{}, ErrAmountFrozen
	}
	e.Status = stored.Status
	e.CreatedAt = stored.CreatedAt
	r.items[e.ID] = e
	return e, nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return shared.NotFoundError{Resource: "enquiry", ID: id.String()}
	}
	delete(r.items, id)
	return nil
}

func date(y int, m time.Month, d int) shared.Date {
	return shared.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func validRequest() CreateRequest {
	return CreateRequest{
		Name:      " Priya Sharma ",
		Phone:     "98274-11116",
		Amount:    money.PriceOf(money.FromRupees(55000)),
		EventDate: date(2026, 2, 14),
		Package:   PackagePremium,
	}
}

func TestCreateEnquiry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, "91")

	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "Priya Sharma", e.Name)
	require.Equal(t, "+919827411116", e.Phone)
	require.Equal(t, StudioWedding, e.Studio)
	require.Equal(t, StatusEnquiry, e.Status)
	require.False(t, e.Converted())
	require.Contains(t, repo.items, e.ID)
}

func TestCreateFromJSONForm(t *testing.T) {
	var req CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"studio": "baby",
		"name": "Anya",
		"phone": "+91 90000 00000",
		"amount": "₹12,500",
		"event_date": "2026-05-01",
		"package": "custom",
		"custom_events": [{"function": "Cradle ceremony", "date": "2026-05-01", "time": "10:30", "address": "Golghar"}]
	}`), &req))

	e, err := NewService(newMemoryRepo(), "91").Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, money.FromRupees(12500), e.Amount)
	require.Len(t, e.CustomEvents, 1)
	require.Equal(t, "Golghar", e.CustomEvents[0].Address)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), "91")
	cases := map[string]func(*CreateRequest){
		"name":            func(r *CreateRequest) { r.Name = "  " },
		"phone":           func(r *CreateRequest) { r.Phone = "12345" },
		"package":         func(r *CreateRequest) { r.Package = "gold" },
		"event_date":      func(r *CreateRequest) { r.EventDate = shared.Date{} },
		"studio":          func(r *CreateRequest) { r.Studio = "corporate" },
		"custom no event": func(r *CreateRequest) { r.Package = PackageCustom },
		"custom no date": func(r *CreateRequest) {
			r.Package = PackageCustom
			r.CustomEvents = []CustomEvent{{Function: "Reception"}}
		},
		"custom bad time": func(r *CreateRequest) {
			r.Package = PackageCustom
			r.CustomEvents = []CustomEvent{{Function: "Reception", Date: date(2026, 2, 15), Time: "7pm"}}
		},
	}
	for name, mutate := range cases {
		req := validRequest()
		mutate(&req)
		_, err := svc.Create(context.Background(), req)
		require.True(t, shared.IsValidation(err), name)
	}
}

func TestNonCustomPackageDropsEvents(t *testing.T) {
	req := validRequest()
	req.CustomEvents = []CustomEvent{{Function: "Reception", Date: date(2026, 2, 15)}}

	e, err := NewService(newMemoryRepo(), "91").Create(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, e.CustomEvents)
}

func TestUpdateEnquiry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, "91")
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	amount := money.PriceOf(money.FromRupees(60000))
	pkg := PackageCustom
	events := []CustomEvent{{Function: "Sangeet", Date: date(2026, 2, 13)}}
	updated, err := svc.Update(context.Background(), e.ID, UpdateRequest{Amount: &amount, Package: &pkg, CustomEvents: &events})
	require.NoError(t, err)
	require.Equal(t, money.FromRupees(60000), updated.Amount)
	require.Equal(t, PackageCustom, updated.Package)
	require.Len(t, updated.CustomEvents, 1)
}

func TestUpdateConvertedEnquiryFreezesAmount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, "91")
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	e.Status = StatusActive
	repo.items[e.ID] = e

	amount := money.PriceOf(money.FromRupees(1))
	_, err = svc.Update(context.Background(), e.ID, UpdateRequest{Amount: &amount})
	require.True(t, shared.IsValidation(err))

	same := money.PriceOf(e.Amount)
	_, err = svc.Update(context.Background(), e.ID, UpdateRequest{Amount: &same})
	require.NoError(t, err)

	name := "Priya S"
	updated, err := svc.Update(context.Background(), e.ID, UpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Priya S", updated.Name)
	require.Equal(t, StatusActive, updated.Status)
}

func TestUpdateAmountLosesToConcurrentConversion(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, "91")
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	repo.beforeUpdate = func() {
		converted := repo.items[e.ID]
		converted.Status = StatusActive
		repo.items[e.ID] = converted
	}

	amount := money.PriceOf(money.FromRupees(1))
	_, err = svc.Update(context.Background(), e.ID, UpdateRequest{Amount: &amount})
	require.ErrorIs(t, err, ErrAmountFrozen)
	require.Equal(t, money.FromRupees(55000), repo.items[e.ID].Amount)
	require.Equal(t, StatusActive, repo.items[e.ID].Status)
}

func TestMalformedAmountIsRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, "91")

	var create CreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Anya","phone":"9000000000","amount":"abc","event_date":"2026-05-01","package":"regular"}`), &create))
	_, err := svc.Create(context.Background(), create)
	var verr shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "amount", verr.Field)
	require.Empty(t, repo.items)

	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	var update UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12k"}`), &update))
	_, err = svc.Update(context.Background(), e.ID, update)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, money.FromRupees(55000), repo.items[e.ID].Amount)
}

func TestDeleteEnquiry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, "91")
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), e.ID))
	_, err = svc.Get(context.Background(), e.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEventsAndLabels(t *testing.T) {
	require.Len(t, Events(StudioWedding, PackageRegular, nil), 4)
	require.Empty(t, Events(StudioBaby, PackagePremium, nil))
	require.Equal(t, "Premium", PackagePremium.Label())
	require.Equal(t, "Baby Studio", StudioBaby.Label())

	q := Quotation(Enquiry{ID: uuid.New(), Name: "A", Amount: money.FromRupees(1000), Studio: StudioWedding, Package: PackageRegular}, receipts.DefaultStudio)
	require.Len(t, q.Events, 4)
	require.Equal(t, "MEHENDI", q.Events[0].Function)
}
