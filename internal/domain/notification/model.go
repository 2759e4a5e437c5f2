package notification

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

// Candidate is one reminder to send; recomputed on every sweep.
type Candidate struct {
	Match  match.Match
	UserID string
	Email  string
}

// IdempotencyKey identifies the reminder for this user, match and start slot.
// A rescheduled match yields a new key.
func (c Candidate) IdempotencyKey() string {
	return IdempotencyKey(c.Match.ID, c.UserID, c.Match.ScheduledAt)
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func IdempotencyKey(matchID int64, userID string, scheduledAt time.Time) string {
	user := unsafeKeyChars.ReplaceAllString(strings.TrimSpace(userID), "-")
	if user == "" {
		user = "unknown"
	}
	slot := scheduledAt.UTC().Truncate(time.Minute).Format("20060102T1504Z")
	return "reminder-" + strconv.FormatInt(matchID, 10) + "-" + user + "-" + slot
}

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Delivery is the durable record behind an idempotency key.
type Delivery struct {
	Key         string
	MatchID     int64
	UserID      string
	Email       string
	ScheduledAt time.Time
	Status      DeliveryStatus
	Attempts    int
	MessageID   string
	LastError   string
	UpdatedAt   time.Time
}

// NewDelivery starts a pending record for the candidate.
func NewDelivery(c Candidate, now time.Time) Delivery {
	return Delivery{
		Key:         c.IdempotencyKey(),
		MatchID:     c.Match.ID,
		UserID:      c.UserID,
		Email:       c.Email,
		ScheduledAt: c.Match.ScheduledAt,
		Status:      DeliveryPending,
		Attempts:    1,
		UpdatedAt:   now,
	}
}
