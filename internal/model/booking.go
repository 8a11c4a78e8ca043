package model

import "time"

// Address is the service location of a booking.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// Booking is a customer's reservation of a service.
//
// TotalAmount is fixed when the booking is made; later catalog price
// changes never touch it. Rating is zero until the customer rates the job.
type Booking struct {
	ID              string `json:"id" validate:"required"`
	ServiceID       string `json:"serviceId"`
	ServiceName     string `json:"serviceName"`
	ServiceCategory string `json:"serviceCategory"`
	ProviderID      string `json:"providerId,omitempty"`
	ProviderName    string `json:"providerName,omitempty"`
	CustomerID      string `json:"customerId"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`

	Address     Address   `json:"address"`
	ScheduledAt time.Time `json:"scheduledAt"`
	TimeSlot    string    `json:"timeSlot"`

	Status      Status  `json:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled declined"`
	TotalAmount float64 `json:"totalAmount" validate:"gte=0"`
	Notes       string  `json:"notes,omitempty"`

	Rating        float64 `json:"rating" validate:"gte=0,lte=5"`
	RatingComment string  `json:"ratingComment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Rated reports whether the customer has left a rating.
func (b Booking) Rated() bool {
	return b.Rating > 0
}
