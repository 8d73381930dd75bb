package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListingPublish(t *testing.T) {
	l := &Listing{Status: LISTING_STATUS_MODERATION}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Publish(now)

	assert.Equal(t, LISTING_STATUS_ACTIVE, l.Status)
	assert.Equal(t, now, *l.PublishedDate)
	assert.Equal(t, now.AddDate(0, 0, ListingActiveDays), *l.ExpiresDate)
}

func TestListingReject(t *testing.T) {
	l := &Listing{Status: LISTING_STATUS_MODERATION}
	l.Reject("prohibited item")

	assert.Equal(t, LISTING_STATUS_REJECTED, l.Status)
	assert.Equal(t, "prohibited item", l.RejectionReason)
	assert.Nil(t, l.PublishedDate)
}

func TestListingIsEditable(t *testing.T) {
	assert.True(t, (&Listing{Status: LISTING_STATUS_DRAFT}).IsEditable())
	assert.True(t, (&Listing{Status: LISTING_STATUS_ACTIVE}).IsEditable())
	assert.False(t, (&Listing{Status: LISTING_STATUS_SOLD}).IsEditable())
	assert.False(t, (&Listing{Status: LISTING_STATUS_ARCHIVED}).IsEditable())
}

func TestReportRequiresTakedown(t *testing.T) {
	assert.True(t, (&ReportedContent{Reason: REPORT_REASON_SPAM}).RequiresTakedown())
	assert.True(t, (&ReportedContent{Reason: REPORT_REASON_FRAUD}).RequiresTakedown())
	assert.True(t, (&ReportedContent{Reason: REPORT_REASON_INAPPROPRIATE}).RequiresTakedown())
	assert.False(t, (&ReportedContent{Reason: REPORT_REASON_DUPLICATE}).RequiresTakedown())
	assert.False(t, (&ReportedContent{Reason: REPORT_REASON_OTHER}).RequiresTakedown())
}

func TestTicketTransitions(t *testing.T) {
	open := &SupportTicket{Status: TICKET_STATUS_OPEN}
	assert.True(t, open.CanTransitionTo(TICKET_STATUS_IN_PROGRESS))
	assert.False(t, open.CanTransitionTo(TICKET_STATUS_RESOLVED))

	inProgress := &SupportTicket{Status: TICKET_STATUS_IN_PROGRESS}
	assert.True(t, inProgress.CanTransitionTo(TICKET_STATUS_RESOLVED))

	closed := &SupportTicket{Status: TICKET_STATUS_CLOSED}
	assert.False(t, closed.CanTransitionTo(TICKET_STATUS_OPEN))
}

func TestPromotionActivate(t *testing.T) {
	p := &EntityPromotion{Status: PROMOTION_STATUS_PENDING}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p.Activate(now, 7)

	assert.Equal(t, PROMOTION_STATUS_ACTIVE, p.Status)
	assert.Equal(t, now.AddDate(0, 0, 7), *p.EndsAt)
}

func TestTransactionSignedAmount(t *testing.T) {
	payment := &PaymentTransaction{Type: TRANSACTION_TYPE_PAYMENT, Amount: 1000}
	refund := &PaymentTransaction{Type: TRANSACTION_TYPE_REFUND, Amount: 400}
	withdrawal := &PaymentTransaction{Type: TRANSACTION_TYPE_WITHDRAWAL, Amount: 250}

	assert.Equal(t, int64(1000), payment.SignedAmount())
	assert.Equal(t, int64(-400), refund.SignedAmount())
	assert.Equal(t, int64(-250), withdrawal.SignedAmount())
}
