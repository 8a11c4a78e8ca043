package testutil

import (
	"time"

	"github.com/roach88/easybook/internal/model"
)

// Customer returns a valid customer user.
func Customer() model.User {
	return model.User{
		ID:        "cust-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0199",
		Role:      model.RoleCustomer,
		Verified:  true,
	}
}

// Service returns a valid service with the given id, category and price.
func Service(id, category string, price float64) model.Service {
	return model.Service{
		ID:          id,
		Name:        category + " service " + id,
		Description: "Test " + category + " service",
		Category:    category,
		Price:       price,
		Rating:      4.0,
		Duration:    "60",
		Available:   true,
	}
}

// Booking returns a valid booking for provider with the given status and
// amount. Timestamps are left zero so the ledger stamps them.
func Booking(id, providerID string, status model.Status, amount float64) model.Booking {
	return model.Booking{
		ID:              id,
		ServiceID:       "1",
		ServiceName:     "Emergency Plumbing Repair",
		ServiceCategory: "Plumbing",
		ProviderID:      providerID,
		CustomerID:      "cust-1",
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "555-0199",
		Address: model.Address{
			Street:     "1 Analytical Way",
			City:       "London",
			State:      "LDN",
			PostalCode: "N1 9GU",
		},
		ScheduledAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		TimeSlot:    "09:00-10:00",
		Status:      status,
		TotalAmount: amount,
	}
}
