package harness

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/easybook/internal/booking"
	"github.com/roach88/easybook/internal/checkout"
	"github.com/roach88/easybook/internal/model"
)

// Outcome cases of a completion.
const (
	CaseOK                = "ok"
	CaseNotFound          = "not_found"
	CaseNotPending        = "not_pending"
	CaseInvalidTransition = "invalid_transition"
	CaseInvalidStatus     = "invalid_status"
	CaseInvalidRating     = "invalid_rating"
	CaseInvalid           = "invalid"
	CaseRejected          = "rejected"
	CaseEmptyCart         = "empty_cart"
	CaseNoSession         = "no_session"
	CaseError             = "error"
)

// Cases lists every outcome case in the order they are checked.
var Cases = []string{
	CaseOK, CaseNotFound, CaseNotPending, CaseInvalidTransition, CaseInvalidStatus,
	CaseInvalidRating, CaseInvalid, CaseRejected, CaseEmptyCart, CaseNoSession, CaseError,
}

var (
	errUnknownService = errors.New("unknown service")
	errRejected       = errors.New("rejected")
	errNoSession      = errors.New("no user signed in")
)

// action executes one scenario step. The returned map becomes the
// completion result.
type action func(ctx context.Context, h *Harness, a args) (map[string]any, error)

var actions map[string]action

func init() {
	actions = map[string]action{
		"session.login":      sessionLogin,
		"session.logout":     sessionLogout,
		"cart.add":           cartAdd,
		"cart.remove":        cartRemove,
		"cart.clear":         cartClear,
		"checkout":           runCheckout,
		"booking.create":     bookingCreate,
		"booking.request":    bookingRequest,
		"booking.set_status": bookingSetStatus,
		"booking.rate":       bookingRate,
		"booking.reschedule": bookingReschedule,
		"service.save":       serviceSave,
		"service.delete":     serviceDelete,
	}
}

// caseOf maps an action error to its outcome case.
func caseOf(err error) string {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return CaseOK
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, errUnknownService):
		return CaseNotFound
	case errors.Is(err, booking.ErrNotPending):
		return CaseNotPending
	case errors.Is(err, booking.ErrInvalidTransition):
		return CaseInvalidTransition
	case errors.Is(err, booking.ErrInvalidStatus):
		return CaseInvalidStatus
	case errors.Is(err, booking.ErrInvalidRating):
		return CaseInvalidRating
	case errors.As(err, &verrs):
		return CaseInvalid
	case errors.Is(err, errRejected):
		return CaseRejected
	case errors.Is(err, checkout.ErrEmptyCart):
		return CaseEmptyCart
	case errors.Is(err, errNoSession):
		return CaseNoSession
	default:
		return CaseError
	}
}

func sessionLogin(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	role := model.Role(a.str("role"))
	if role == "" {
		role = model.RoleCustomer
	}
	user := model.User{
		ID:        a.str("id"),
		FirstName: a.str("first_name"),
		LastName:  a.str("last_name"),
		Email:     a.str("email"),
		Phone:     a.str("phone"),
		Role:      role,
		Verified:  a.flag("verified"),
	}
	if err := h.session.Save(ctx, user); err != nil {
		return nil, err
	}
	return map[string]any{"user": user.ID}, nil
}

func sessionLogout(ctx context.Context, h *Harness, _ args) (map[string]any, error) {
	return nil, h.session.Clear(ctx)
}

func cartAdd(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	id := a.str("service_id")
	svc, ok := h.catalog.Service(ctx, id)
	if !ok {
		return nil, fmt.Errorf("service %q: %w", id, errUnknownService)
	}
	if err := h.cart.Add(ctx, svc); err != nil {
		return nil, err
	}
	return h.cartResult(ctx)
}

func cartRemove(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	if err := h.cart.Remove(ctx, a.str("service_id")); err != nil {
		return nil, err
	}
	return h.cartResult(ctx)
}

func cartClear(ctx context.Context, h *Harness, _ args) (map[string]any, error) {
	if err := h.cart.Clear(ctx); err != nil {
		return nil, err
	}
	return h.cartResult(ctx)
}

func runCheckout(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	user, err := h.session.Current(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNoSession
	}

	scheduled, err := a.date("date")
	if err != nil {
		return nil, err
	}
	created, err := h.checkout.Checkout(ctx, *user, checkout.Details{
		Address:     a.address(),
		ScheduledAt: scheduled,
		TimeSlot:    a.str("slot"),
		Notes:       a.str("notes"),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]any, len(created))
	for i, b := range created {
		ids[i] = b.ID
	}
	return map[string]any{"bookings": len(created), "ids": ids}, nil
}

func bookingCreate(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	b, err := h.bookingFromArgs(ctx, a)
	if err != nil {
		return nil, err
	}
	created, err := h.bookings.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	return bookingResult(created), nil
}

func bookingRequest(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	b, err := h.bookingFromArgs(ctx, a)
	if err != nil {
		return nil, err
	}
	created, err := h.bookings.CreateProviderRequest(ctx, b)
	if err != nil {
		return nil, err
	}
	return bookingResult(created), nil
}

func bookingSetStatus(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	status := model.Status(a.str("status"))
	if err := h.bookings.SetStatus(ctx, a.str("id"), status); err != nil {
		return nil, err
	}
	return map[string]any{"status": string(status)}, nil
}

func bookingRate(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	rating, err := a.num("rating")
	if err != nil {
		return nil, err
	}
	if err := h.bookings.RecordRating(ctx, a.str("id"), rating, a.str("comment")); err != nil {
		return nil, err
	}
	return map[string]any{"rating": rating}, nil
}

func bookingReschedule(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	scheduled, err := a.date("date")
	if err != nil {
		return nil, err
	}
	change := booking.Change{ScheduledAt: scheduled, TimeSlot: a.str("slot")}
	if addr := a.address(); addr != (model.Address{}) {
		change.Address = &addr
	}
	return nil, h.bookings.Reschedule(ctx, a.str("id"), change)
}

func serviceSave(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	price, err := a.num("price")
	if err != nil {
		return nil, err
	}
	rating, err := a.num("rating")
	if err != nil {
		return nil, err
	}
	svc := model.Service{
		ID:          a.str("id"),
		Name:        a.str("name"),
		Description: a.str("description"),
		Category:    a.str("category"),
		Price:       price,
		Rating:      rating,
		Duration:    a.str("duration"),
		Available:   true,
	}
	if !h.catalog.SaveService(ctx, svc) {
		return nil, fmt.Errorf("service %q: %w", svc.ID, errRejected)
	}
	return map[string]any{"services": len(h.catalog.AllServices(ctx))}, nil
}

func serviceDelete(ctx context.Context, h *Harness, a args) (map[string]any, error) {
	if !h.catalog.DeleteService(ctx, a.str("id")) {
		return nil, fmt.Errorf("service %q: %w", a.str("id"), errRejected)
	}
	return map[string]any{"services": len(h.catalog.AllServices(ctx))}, nil
}

func (h *Harness) cartResult(ctx context.Context) (map[string]any, error) {
	items, err := h.cart.All(ctx)
	if err != nil {
		return nil, err
	}
	total, err := h.cart.Total(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": len(items), "total": total}, nil
}

// bookingFromArgs builds a booking from step args. The service fields are
// filled from the catalog when service_id names a known service; an amount
// arg overrides the catalog price.
func (h *Harness) bookingFromArgs(ctx context.Context, a args) (model.Booking, error) {
	scheduled, err := a.date("date")
	if err != nil {
		return model.Booking{}, err
	}
	b := model.Booking{
		ID:           a.str("id"),
		ServiceID:    a.str("service_id"),
		ProviderID:   a.str("provider_id"),
		CustomerID:   a.str("customer_id"),
		CustomerName: a.str("customer_name"),
		Address:      a.address(),
		ScheduledAt:  scheduled,
		TimeSlot:     a.str("slot"),
		Status:       model.Status(a.str("status")),
		Notes:        a.str("notes"),
	}
	if b.ID == "" {
		b.ID = h.nextID()
	}
	if svc, ok := h.catalog.Service(ctx, b.ServiceID); ok {
		b.ServiceName = svc.Name
		b.ServiceCategory = svc.Category
		b.TotalAmount = svc.Price
	}
	if c := a.str("category"); c != "" {
		b.ServiceCategory = c
	}
	if _, ok := a["amount"]; ok {
		amount, err := a.num("amount")
		if err != nil {
			return model.Booking{}, err
		}
		b.TotalAmount = amount
	}
	return b, nil
}

func bookingResult(b model.Booking) map[string]any {
	return map[string]any{
		"id":       b.ID,
		"status":   string(b.Status),
		"provider": b.ProviderID,
		"amount":   b.TotalAmount,
	}
}

// args is the argument map of a step as decoded from YAML.
type args map[string]any

// str returns the arg as a string. Missing args are "".
func (a args) str(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// num returns the arg as a float. Missing args are 0.
func (a args) num(key string) (float64, error) {
	switch v := a[key].(type) {
	case nil:
		return 0, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("arg %s: %w", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("arg %s: not a number: %v", key, v)
	}
}

func (a args) flag(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// date parses a calendar date or RFC 3339 timestamp. Missing args are the
// zero time.
func (a args) date(key string) (time.Time, error) {
	if t, ok := a[key].(time.Time); ok {
		return t.UTC(), nil
	}
	raw := a.str(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("arg %s: %w", key, err)
	}
	return t.UTC(), nil
}

func (a args) address() model.Address {
	return model.Address{
		Street:     a.str("street"),
		City:       a.str("city"),
		State:      a.str("state"),
		PostalCode: a.str("postal_code"),
	}
}
