package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type userInsertModel struct {
	ID                 string `db:"id"`
	Email              string `db:"email"`
	EmailNotifications bool   `db:"email_notifications"`
}

type userPreferenceInsertModel struct {
	UserID  string         `db:"user_id"`
	Games   pq.StringArray `db:"games"`
	Leagues pq.StringArray `db:"leagues"`
}

type subscriberRow struct {
	UserID             string `db:"id"`
	Email              string `db:"email"`
	EmailNotifications bool   `db:"email_notifications"`
}

type userPreferenceRow struct {
	UserID             string         `db:"id"`
	Email              sql.NullString `db:"email"`
	EmailNotifications bool           `db:"email_notifications"`
	Games              pq.StringArray `db:"games"`
	Leagues            pq.StringArray `db:"leagues"`
	UserUpdatedAt      time.Time      `db:"user_updated_at"`
	PrefUpdatedAt      sql.NullTime   `db:"pref_updated_at"`
}

type deliveryInsertModel struct {
	Key         string    `db:"idempotency_key"`
	MatchID     int64     `db:"match_id"`
	UserID      string    `db:"user_id"`
	Email       string    `db:"email"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Status      string    `db:"status"`
	Attempts    int       `db:"attempts"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type deliveryRow struct {
	Key         string    `db:"idempotency_key"`
	MatchID     int64     `db:"match_id"`
	UserID      string    `db:"user_id"`
	Email       string    `db:"email"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Status      string    `db:"status"`
	Attempts    int       `db:"attempts"`
	MessageID   string    `db:"message_id"`
	LastError   string    `db:"last_error"`
	UpdatedAt   time.Time `db:"updated_at"`
}
