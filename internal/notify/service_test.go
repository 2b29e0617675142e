package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestBookingConfirmedSendsEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "estudio@casaondara.es", time.UTC, nil)

	start := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	err := svc.BookingConfirmed(context.Background(), BookingSummary{
		CustomerName: "María López",
		PhoneDigits:  "612345678",
		PackName:     "domotica-basica",
		Start:        &start,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "estudio@casaondara.es" {
		t.Fatalf("unexpected recipient %s", sender.sent[0].To)
	}
}

func TestBookingConfirmedNoRecipientIsNoop(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "", time.UTC, nil)
	if err := svc.BookingConfirmed(context.Background(), BookingSummary{CustomerName: "X"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("expected no email without a configured recipient")
	}
}

func TestEnquiryReceivedPropagatesSendError(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(sender, "estudio@casaondara.es", time.UTC, nil)
	if err := svc.EnquiryReceived(context.Background(), BookingSummary{CustomerName: "X"}); err == nil {
		t.Fatal("expected error from failing sender")
	}
}
