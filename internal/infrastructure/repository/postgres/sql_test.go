package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	qb "github.com/riskibarqy/esport-notifier/internal/platform/querybuilder"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get preference: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: relation users does not exist")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestTruncateReason(t *testing.T) {
	t.Parallel()

	if got := truncateReason("  resend status=500  "); got != "resend status=500" {
		t.Fatalf("unexpected reason: %q", got)
	}
	long := strings.Repeat("x", maxErrorLength+50)
	if got := truncateReason(long); len(got) != maxErrorLength {
		t.Fatalf("expected truncation to %d, got %d", maxErrorLength, len(got))
	}
}

func TestTruncateReason_KeepsRunesWhole(t *testing.T) {
	t.Parallel()

	reason := strings.Repeat("x", maxErrorLength-1) + "é tail"
	got := truncateReason(reason)
	if len(got) != maxErrorLength-1 {
		t.Fatalf("expected cut before the split rune, got len %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf-8 after truncation")
	}
}

func TestClaimQuery(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	query, args, err := qb.InsertModel("notification_deliveries", deliveryInsertModel{
		Key:         "reminder-1-u1-20260501T1800Z",
		MatchID:     1,
		UserID:      "u1",
		Email:       "u1@example.com",
		ScheduledAt: at,
		Status:      "pending",
		Attempts:    1,
		UpdatedAt:   at,
	}, claimConflictSuffix(90*time.Second))
	if err != nil {
		t.Fatalf("build claim query: %v", err)
	}
	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	for _, fragment := range []string{
		"INSERT INTO notification_deliveries (idempotency_key, match_id, user_id, email, scheduled_at, status, attempts, updated_at)",
		"ON CONFLICT (idempotency_key)",
		"WHERE notification_deliveries.status = 'failed'",
		"make_interval(secs => 90)",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("claim query missing %q:\n%s", fragment, query)
		}
	}
}

func TestMarkSentQuery_SkipsRowsAlreadySent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 17, 55, 0, 0, time.UTC)
	query, args, err := markSentQuery("reminder-1-u1-20260501T1800Z", " msg_123 ", at)
	if err != nil {
		t.Fatalf("build mark sent query: %v", err)
	}

	want := "UPDATE notification_deliveries SET status = $1, message_id = $2, last_error = $3, updated_at = $4 WHERE idempotency_key = $5 AND status <> $6"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 6 || args[1] != "msg_123" || args[2] != nil || args[5] != "sent" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSubscriberQueryUsesArrayMembership(t *testing.T) {
	t.Parallel()

	query, args, err := qb.Select("u.id", "COALESCE(u.email, '') AS email", "u.email_notifications").
		From("user_preferences p").
		Join("users u ON u.id = p.user_id").
		Where(qb.Any("p.leagues", "lec")).
		OrderBy("u.id").
		ToSQL()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	want := "SELECT u.id, COALESCE(u.email, '') AS email, u.email_notifications FROM user_preferences p JOIN users u ON u.id = p.user_id WHERE $1 = ANY(p.leagues) ORDER BY u.id"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 1 || args[0] != "lec" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestNewDeliveryLedger_DefaultClaimTTL(t *testing.T) {
	t.Parallel()

	if got := NewDeliveryLedger(nil, 0).claimTTL; got != defaultClaimTTL {
		t.Fatalf("expected default claim ttl, got %s", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
