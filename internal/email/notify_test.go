package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/booking"
)

type fakeSender struct {
	recipient string
	subject   string
	body      string
	err       error
}

func (f *fakeSender) Send(ctx context.Context, recipient, subject, body string) error {
	f.recipient = recipient
	f.subject = subject
	f.body = body
	return f.err
}

func sampleBooking() booking.Booking {
	coachID := int64(2)
	return booking.Booking{
		ID:        7,
		UserName:  "Alice",
		CourtID:   3,
		CoachID:   &coachID,
		Rackets:   2,
		Shoes:     1,
		StartTime: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC),
		Price:     612.5,
	}
}

func TestNewBookingNotifierValidation(t *testing.T) {
	if _, err := NewBookingNotifier(nil, "desk@example.com"); err == nil {
		t.Error("expected error for nil sender")
	}
	if _, err := NewBookingNotifier(&fakeSender{}, "  "); err == nil {
		t.Error("expected error for blank recipient")
	}
	if _, err := NewBookingNotifier(&fakeSender{}, "desk@example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNotifyBookingCreated(t *testing.T) {
	sender := &fakeSender{}
	notifier, err := NewBookingNotifier(sender, "desk@example.com")
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	if err := notifier.NotifyBookingCreated(context.Background(), sampleBooking(), "Court A"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if sender.recipient != "desk@example.com" {
		t.Errorf("recipient = %q", sender.recipient)
	}
	if !strings.Contains(sender.subject, "#7") || !strings.Contains(sender.subject, "Court A") {
		t.Errorf("subject = %q", sender.subject)
	}
	for _, want := range []string{"Alice", "Court A", "Rackets: 2", "Shoe pairs: 1", "Coach ID: 2", "Price: 612.50"} {
		if !strings.Contains(sender.body, want) {
			t.Errorf("body missing %q:\n%s", want, sender.body)
		}
	}
}

func TestBookingSummaryOmitsZeroEquipment(t *testing.T) {
	b := sampleBooking()
	b.Rackets = 0
	b.Shoes = 0
	b.CoachID = nil

	body := bookingSummary(b, "Court A")
	if strings.Contains(body, "Rackets") || strings.Contains(body, "Shoe pairs") || strings.Contains(body, "Coach") {
		t.Errorf("body should omit zero-valued lines:\n%s", body)
	}
}

func TestNotifyUpcomingBookingSubject(t *testing.T) {
	sender := &fakeSender{}
	notifier, err := NewBookingNotifier(sender, "desk@example.com")
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	if err := notifier.NotifyUpcomingBooking(context.Background(), sampleBooking(), "Court A"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(sender.subject, "Upcoming booking #7") {
		t.Errorf("subject = %q", sender.subject)
	}
	if !strings.Contains(sender.subject, "18:00") {
		t.Errorf("subject missing start time: %q", sender.subject)
	}
}
