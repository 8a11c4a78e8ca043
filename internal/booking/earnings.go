package booking

import (
	"context"

	"github.com/roach88/easybook/internal/model"
)

// Earnings is the one earnings policy: the full amount of every completed
// booking counts, nothing else does.
func Earnings(bookings []model.Booking) float64 {
	var total float64
	for _, b := range bookings {
		if b.Status == model.StatusCompleted {
			total += b.TotalAmount
		}
	}
	return total
}

// ProviderEarnings applies Earnings to the bookings of providerID.
func (l *Ledger) ProviderEarnings(ctx context.Context, providerID string) (float64, error) {
	bookings, err := l.ForProvider(ctx, providerID)
	if err != nil {
		return 0, err
	}
	return Earnings(bookings), nil
}

// Summary is the ledger-wide view used by the admin dashboard.
type Summary struct {
	Total    int                  `json:"total"`
	ByStatus map[model.Status]int `json:"byStatus"`
	Earnings float64              `json:"earnings"`
	Rated    int                  `json:"rated"`
}

// Summary counts bookings per status and totals earnings with the same
// policy as ProviderEarnings.
func (l *Ledger) Summary(ctx context.Context) (Summary, error) {
	bookings, err := l.All(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Total:    len(bookings),
		ByStatus: make(map[model.Status]int, len(model.Statuses)),
		Earnings: Earnings(bookings),
	}
	for _, status := range model.Statuses {
		s.ByStatus[status] = 0
	}
	for _, b := range bookings {
		s.ByStatus[b.Status]++
		if b.Rated() {
			s.Rated++
		}
	}
	return s, nil
}
