package order

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/identity"
	"github.com/agah-solutions/forge/internal/messaging"
	"github.com/agah-solutions/forge/internal/notification"
	"github.com/agah-solutions/forge/internal/pricing"
	catalogrepo "github.com/agah-solutions/forge/internal/repository/catalog"
	repo "github.com/agah-solutions/forge/internal/repository/order"
	"github.com/agah-solutions/forge/pkg/errorbank"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decP(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intP(v int) *int { return &v }

// fakeRepo keeps orders in memory and can simulate number collisions.
type fakeRepo struct {
	orders      map[string]*entity.Order
	collisions  int
	createCalls int
	nextItemID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]*entity.Order)}
}

func (f *fakeRepo) Create(_ context.Context, order *entity.Order) error {
	f.createCalls++
	if f.collisions > 0 {
		f.collisions--
		return repo.ErrDuplicateNumber
	}
	if _, ok := f.orders[order.Number]; ok {
		return repo.ErrDuplicateNumber
	}
	for _, item := range order.Items {
		f.nextItemID++
		item.ID = f.nextItemID
	}
	f.orders[order.Number] = order
	return nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, number string) (*entity.Order, error) {
	order, ok := f.orders[number]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return order, nil
}

func (f *fakeRepo) ListByEmail(_ context.Context, email string) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, order := range f.orders {
		if order.CustomerEmail == email {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, order *entity.Order) error {
	if _, ok := f.orders[order.Number]; !ok {
		return repo.ErrNotFound
	}
	f.orders[order.Number] = order
	return nil
}

func (f *fakeRepo) SaveItemRecomputeTotals(_ context.Context, item *entity.OrderItem) (*entity.Order, error) {
	for _, order := range f.orders {
		for i, existing := range order.Items {
			if existing.ID == item.ID {
				order.Items[i] = item
				order.RecomputeTotals()
				return order, nil
			}
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, number string) error {
	if _, ok := f.orders[number]; !ok {
		return repo.ErrNotFound
	}
	delete(f.orders, number)
	return nil
}

// fakePublisher records events and can fail on demand.
type fakePublisher struct {
	events []notification.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, _ []byte, value []byte) error {
	if f.err != nil {
		return f.err
	}
	var ev notification.Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakePublisher) Topic() string { return "orders.events" }

type fakeCatalog struct {
	services map[string]*entity.ServiceType
}

func (f *fakeCatalog) GetBySlug(_ context.Context, slug string) (*entity.ServiceType, error) {
	if svc, ok := f.services[slug]; ok {
		return svc, nil
	}
	return nil, catalogrepo.ErrNotFound
}

type fakeUsers struct {
	users map[int64]*entity.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakePublisher) {
	t.Helper()
	repository := newFakeRepo()
	publisher := &fakePublisher{}
	catalog := &fakeCatalog{services: map[string]*entity.ServiceType{
		"plasma_cutting": {ID: 1, Slug: "plasma_cutting", Family: pricing.FamilyPlasmaCutting, Active: true},
		"laser_cutting":  {ID: 2, Slug: "laser_cutting", Family: pricing.FamilyLaserCutting, Active: true},
		"vinyl_wrap":     {ID: 3, Slug: "vinyl_wrap", BasePrice: dec("99.90"), Active: true},
	}}
	users := &fakeUsers{users: map[int64]*entity.User{
		7: {ID: 7, Email: "op@example.com", Type: entity.UserStaff, Active: true},
		8: {ID: 8, Email: "client@example.com", Type: entity.UserCustomer, Active: true},
	}}

	cfg := config.Config{
		Cache:     config.Cache{DefaultTTL: time.Minute},
		Messaging: config.Messaging{Enabled: true, Kafka: config.Kafka{Topic: "orders.events"}},
		Orders:    config.Orders{NumberAttempts: 5},
	}

	svc := NewService(Params{
		Repository: repository,
		Catalog:    catalog,
		Users:      users,
		Cache:      nil,
		Config:     cfg,
		Logger:     zap.NewNop(),
		Publisher:  publisher,
	})
	return svc, repository, publisher
}

func staffCtx() context.Context {
	return identity.WithActor(context.Background(), identity.Actor{Role: identity.RoleStaff, UserID: 7})
}

func customerCtx() context.Context {
	return identity.WithActor(context.Background(), identity.Actor{Role: identity.RoleCustomer})
}

func checkoutInput() CreateInput {
	return CreateInput{
		CustomerName:  "Dana",
		CustomerEmail: "dana@example.com",
		Items: []ItemInput{
			{ServiceSlug: "plasma_cutting", Quantity: 1},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	svc, repository, publisher := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, entity.StatePending, order.State)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{8}$`), order.Number)
	require.Len(t, order.Items, 1)
	assert.True(t, dec("1329.86").Equal(order.Items[0].EstimatedUnitPrice), "got %s", order.Items[0].EstimatedUnitPrice)
	assert.True(t, dec("1329.86").Equal(order.EstimatedPrice))
	assert.False(t, order.FinalPriceSet())

	require.Len(t, publisher.events, 1)
	assert.Equal(t, entity.NotifyReceived, publisher.events[0].Kind)
	assert.Equal(t, order.Number, publisher.events[0].OrderNumber)

	_, ok := repository.orders[order.Number]
	assert.True(t, ok)
}

func TestCreateOrderBasePriceFallback(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := checkoutInput()
	in.Items = []ItemInput{{ServiceSlug: "vinyl_wrap", Quantity: 2}}
	order, err := svc.Create(customerCtx(), in)
	require.NoError(t, err)
	assert.True(t, dec("99.90").Equal(order.Items[0].EstimatedUnitPrice))
	assert.True(t, dec("199.80").Equal(order.EstimatedPrice))
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		kind   errorbank.Kind
	}{
		{"missing name", func(in *CreateInput) { in.CustomerName = " " }, errorbank.KindBadRequest},
		{"missing email", func(in *CreateInput) { in.CustomerEmail = "" }, errorbank.KindBadRequest},
		{"no items", func(in *CreateInput) { in.Items = nil }, errorbank.KindBadRequest},
		{"zero quantity", func(in *CreateInput) { in.Items[0].Quantity = 0 }, errorbank.KindUnprocessableEntity},
		{"negative length", func(in *CreateInput) { in.Items[0].Length = decP("-1") }, errorbank.KindUnprocessableEntity},
		{"negative minutes", func(in *CreateInput) { in.Items[0].ProcessMinutes = intP(-5) }, errorbank.KindUnprocessableEntity},
		{"design without price", func(in *CreateInput) { in.Items[0].NeedsCustomDesign = true }, errorbank.KindUnprocessableEntity},
		{"unknown service", func(in *CreateInput) { in.Items[0].ServiceSlug = "embroidery" }, errorbank.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := checkoutInput()
			tt.mutate(&in)
			_, err := svc.Create(customerCtx(), in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errorbank.From(err).Kind())
		})
	}
}

func TestCreateOrderRetriesNumberCollision(t *testing.T) {
	svc, repository, _ := newTestService(t)
	repository.collisions = 2

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)
	assert.Equal(t, 3, repository.createCalls)
	assert.NotEmpty(t, order.Number)
}

func TestCreateOrderNumberExhaustion(t *testing.T) {
	svc, repository, _ := newTestService(t)
	repository.collisions = 99

	_, err := svc.Create(customerCtx(), checkoutInput())
	require.Error(t, err)
	assert.Equal(t, errorbank.KindInternal, errorbank.From(err).Kind())
	assert.Equal(t, 5, repository.createCalls)
}

func TestTransitionQuoteReadyVersusFinalPriceReady(t *testing.T) {
	svc, _, publisher := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)
	publisher.events = nil

	// Without final pricing, entering estimated quotes the customer.
	_, err = svc.Transition(staffCtx(), order.Number, entity.StateEstimated)
	require.NoError(t, err)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, entity.NotifyQuoteReady, publisher.events[0].Kind)

	// Staff sets the final unit price on every item; re-entering estimated
	// must fire final_price_ready and only final_price_ready.
	publisher.events = nil
	_, err = svc.UpdateItemInputs(staffCtx(), order.Number, order.Items[0].ID, ItemPricingUpdate{
		ProcessMinutes: intP(45),
	})
	require.NoError(t, err)

	updated, err := svc.Transition(staffCtx(), order.Number, entity.StateEstimated)
	require.NoError(t, err)
	require.True(t, updated.FinalPriceSet())

	require.Len(t, publisher.events, 1)
	assert.Equal(t, entity.NotifyFinalPriceReady, publisher.events[0].Kind)
	assert.NotEmpty(t, publisher.events[0].FinalPrice)
}

func TestTransitionRejectedLeavesStateUntouched(t *testing.T) {
	svc, repository, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)
	repository.orders[order.Number].State = entity.StateCompleted

	_, err = svc.Transition(staffCtx(), order.Number, entity.StateConfirmed)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Equal(t, entity.StateCompleted, repository.orders[order.Number].State)
}

func TestTransitionStaffGating(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	_, err = svc.Transition(customerCtx(), order.Number, entity.StateEstimated)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())

	// Customers may still confirm and cancel their own order.
	_, err = svc.Confirm(customerCtx(), order.Number)
	require.NoError(t, err)
	_, err = svc.Cancel(customerCtx(), order.Number)
	require.NoError(t, err)
}

func TestTransitionSurvivesPublishFailure(t *testing.T) {
	svc, repository, publisher := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	publisher.err = errors.New("broker down")
	updated, err := svc.Confirm(customerCtx(), order.Number)
	require.NoError(t, err, "a notification failure must never fail the transition")
	assert.Equal(t, entity.StateConfirmed, updated.State)
	assert.Equal(t, entity.StateConfirmed, repository.orders[order.Number].State)
}

func TestUpdateItemInputsRecomputesFinalPrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)
	item := order.Items[0]
	quoted := item.EstimatedUnitPrice

	updated, err := svc.UpdateItemInputs(staffCtx(), order.Number, item.ID, ItemPricingUpdate{
		ProcessMinutes: intP(90),
		MaterialCost:   decP("1200"),
		Length:         decP("24"),
		Width:          decP("48"),
	})
	require.NoError(t, err)

	got := updated.Items[0]
	require.True(t, got.FinalUnitPrice.Valid)
	assert.False(t, got.FinalUnitPrice.Decimal.Equal(quoted))
	// The initial quote must survive operator edits untouched.
	assert.True(t, got.EstimatedUnitPrice.Equal(quoted))
	assert.True(t, updated.FinalPriceSet())
}

func TestUpdateItemInputsRequiresStaff(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	_, err = svc.UpdateItemInputs(customerCtx(), order.Number, order.Items[0].ID, ItemPricingUpdate{
		ProcessMinutes: intP(45),
	})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())
}

func TestUpdateItemDetailsNeverTouchesFinalPrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)
	item := order.Items[0]
	quoted := item.EstimatedUnitPrice

	newQty := 4
	updated, err := svc.UpdateItemDetails(customerCtx(), order.Number, item.ID, ItemDetailsUpdate{
		Quantity: &newQty,
	})
	require.NoError(t, err)

	got := updated.Items[0]
	assert.Equal(t, 4, got.Quantity)
	assert.False(t, got.FinalUnitPrice.Valid, "customer edits must not set a final price")
	assert.True(t, got.EstimatedUnitPrice.Equal(quoted))
	assert.True(t, updated.EstimatedPrice.Equal(quoted.Mul(dec("4"))))
}

func TestUpdateItemDetailsDesignCharge(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)
	item := order.Items[0]

	flag := true
	_, err = svc.UpdateItemDetails(customerCtx(), order.Number, item.ID, ItemDetailsUpdate{
		NeedsCustomDesign: &flag,
	})
	require.Error(t, err, "design flag without a price must be rejected")

	updated, err := svc.UpdateItemDetails(customerCtx(), order.Number, item.ID, ItemDetailsUpdate{
		NeedsCustomDesign: &flag,
		CustomDesignPrice: decP("200"),
	})
	require.NoError(t, err)
	// Design charge is added once, independent of quantity.
	assert.True(t, updated.EstimatedPrice.Equal(item.EstimatedUnitPrice.Add(dec("200"))))
}

func TestAssignOperator(t *testing.T) {
	svc, repository, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	_, err = svc.AssignOperator(customerCtx(), order.Number, 7)
	assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())

	_, err = svc.AssignOperator(staffCtx(), order.Number, 8)
	assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())

	updated, err := svc.AssignOperator(staffCtx(), order.Number, 7)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedUserID)
	assert.Equal(t, int64(7), *updated.AssignedUserID)
	assert.NotNil(t, repository.orders[order.Number].AssignedUserID)
}

func TestSetCompletionEstimate(t *testing.T) {
	svc, repository, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	_, err = svc.SetCompletionEstimate(customerCtx(), order.Number, 5)
	assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())

	_, err = svc.SetCompletionEstimate(staffCtx(), order.Number, 0)
	assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())

	updated, err := svc.SetCompletionEstimate(staffCtx(), order.Number, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.EstimatedCompletionDays)
	assert.Equal(t, 5, repository.orders[order.Number].EstimatedCompletionDays)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc, repository, _ := newTestService(t)

	order, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	err = svc.Delete(staffCtx(), order.Number)
	assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())

	adminCtx := identity.WithActor(context.Background(), identity.Actor{Role: identity.RoleAdmin, UserID: 1})
	require.NoError(t, svc.Delete(adminCtx, order.Number))
	_, ok := repository.orders[order.Number]
	assert.False(t, ok)
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "ZZZZZZZZ")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestListByEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(customerCtx(), checkoutInput())
	require.NoError(t, err)

	orders, err := svc.ListByEmail(context.Background(), "dana@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = svc.ListByEmail(context.Background(), "  ")
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}
