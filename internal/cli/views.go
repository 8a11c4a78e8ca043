package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/roach88/easybook/internal/booking"
	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/session"
	"github.com/roach88/easybook/internal/store"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

type serviceList []model.Service

func (l serviceList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No services found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING")
	for _, s := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.1f\n", s.ID, s.Name, s.Category, s.Price, s.Rating)
	}
	return tw.Flush()
}

type categoryList []model.Category

func (l categoryList) WriteText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tDESCRIPTION")
	for _, c := range l {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Description)
	}
	return tw.Flush()
}

type bookingList []model.Booking

func (l bookingList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No bookings found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSERVICE\tCUSTOMER\tPROVIDER\tSTATUS\tAMOUNT\tSCHEDULED")
	for _, b := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			b.ID, b.ServiceName, b.CustomerName, orDash(b.ProviderName), b.Status, b.TotalAmount, formatSchedule(b))
	}
	return tw.Flush()
}

type summaryView booking.Summary

func (s summaryView) WriteText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total bookings:\t%d\n", s.Total)
	for _, status := range model.Statuses {
		fmt.Fprintf(tw, "  %s:\t%d\n", status, s.ByStatus[status])
	}
	fmt.Fprintf(tw, "Rated:\t%d\n", s.Rated)
	fmt.Fprintf(tw, "Earnings:\t%.2f\n", s.Earnings)
	return tw.Flush()
}

type earningsView struct {
	ProviderID string  `json:"providerId"`
	Earnings   float64 `json:"earnings"`
}

func (e earningsView) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Earnings for %s: %.2f\n", e.ProviderID, e.Earnings)
	return err
}

type providerStatsView struct {
	ProviderID      string  `json:"providerId"`
	PendingRequests int     `json:"pendingRequests"`
	Earnings        float64 `json:"earnings"`
}

func (p providerStatsView) WriteText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Provider:\t%s\n", p.ProviderID)
	fmt.Fprintf(tw, "Pending requests:\t%d\n", p.PendingRequests)
	fmt.Fprintf(tw, "Earnings:\t%.2f\n", p.Earnings)
	return tw.Flush()
}

type customerStatsView struct {
	CustomerID    string `json:"customerId"`
	TotalBookings int    `json:"totalBookings"`
}

func (c customerStatsView) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Bookings made by %s: %d\n", c.CustomerID, c.TotalBookings)
	return err
}

type cartView struct {
	Items []model.Service `json:"items"`
	Total float64         `json:"total"`
}

func (c cartView) WriteText(w io.Writer) error {
	if len(c.Items) == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty")
		return err
	}
	if err := serviceList(c.Items).WriteText(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %.2f (%d items)\n", c.Total, len(c.Items))
	return err
}

type profileView session.Profile

func (p profileView) WriteText(w io.Writer) error {
	if !p.LoggedIn {
		_, err := fmt.Fprintln(w, "Not logged in")
		return err
	}
	_, err := fmt.Fprintf(w, "%s <%s> (%s, id %s)\n", p.Name, p.Email, p.Role, p.UserID)
	return err
}

type slotList []store.SlotInfo

func (l slotList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No slots stored")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SLOT\tREVISION\tBYTES\tUPDATED")
	for _, s := range l {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Name, s.Revision, s.Size, s.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// message is a one-line confirmation. In JSON mode it encodes as
// {"message": ...} plus any extra fields.
type message struct {
	Text   string         `json:"message"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (m message) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, m.Text)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSchedule(b model.Booking) string {
	if b.ScheduledAt.IsZero() {
		return orDash(b.TimeSlot)
	}
	date := b.ScheduledAt.Format(time.DateOnly)
	if b.TimeSlot == "" {
		return date
	}
	return date + " " + b.TimeSlot
}
