// internal/email/notify.go
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtsidehq/courtside/internal/booking"
)

// BookingNotifier emails the front desk about confirmed bookings and
// upcoming reminders. Bookings carry no requester address, so everything
// goes to one configured operations inbox.
type BookingNotifier struct {
	sender    Sender
	recipient string
}

func NewBookingNotifier(sender Sender, recipient string) (*BookingNotifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if strings.TrimSpace(recipient) == "" {
		return nil, fmt.Errorf("notification recipient is required")
	}
	return &BookingNotifier{sender: sender, recipient: recipient}, nil
}

// NotifyBookingCreated emails a confirmation summary for a new booking.
func (n *BookingNotifier) NotifyBookingCreated(ctx context.Context, b booking.Booking, courtName string) error {
	subject := fmt.Sprintf("New booking #%d: %s", b.ID, courtName)
	return n.sender.Send(ctx, n.recipient, subject, bookingSummary(b, courtName))
}

// NotifyUpcomingBooking emails a reminder for a booking starting soon.
func (n *BookingNotifier) NotifyUpcomingBooking(ctx context.Context, b booking.Booking, courtName string) error {
	subject := fmt.Sprintf("Upcoming booking #%d: %s at %s",
		b.ID, courtName, b.StartTime.UTC().Format("15:04 MST"))
	return n.sender.Send(ctx, n.recipient, subject, bookingSummary(b, courtName))
}

func bookingSummary(b booking.Booking, courtName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Booking #%d\n", b.ID)
	fmt.Fprintf(&sb, "Requested by: %s\n", b.UserName)
	fmt.Fprintf(&sb, "Court: %s\n", courtName)
	fmt.Fprintf(&sb, "From: %s\n", b.StartTime.UTC().Format(time.RFC1123))
	fmt.Fprintf(&sb, "To:   %s\n", b.EndTime.UTC().Format(time.RFC1123))
	if b.Rackets > 0 {
		fmt.Fprintf(&sb, "Rackets: %d\n", b.Rackets)
	}
	if b.Shoes > 0 {
		fmt.Fprintf(&sb, "Shoe pairs: %d\n", b.Shoes)
	}
	if b.CoachID != nil {
		fmt.Fprintf(&sb, "Coach ID: %d\n", *b.CoachID)
	}
	fmt.Fprintf(&sb, "Price: %.2f\n", b.Price)
	return sb.String()
}
