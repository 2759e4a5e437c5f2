package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
	qb "github.com/riskibarqy/esport-notifier/internal/platform/querybuilder"
)

type PreferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) ListSubscribersByGame(ctx context.Context, game match.Game) ([]preference.Subscriber, error) {
	return r.listSubscribers(ctx, "p.games", string(game))
}

func (r *PreferenceRepository) ListSubscribersByLeague(ctx context.Context, leagueSlug string) ([]preference.Subscriber, error) {
	slug := strings.ToLower(strings.TrimSpace(leagueSlug))
	if slug == "" {
		return nil, nil
	}
	return r.listSubscribers(ctx, "p.leagues", slug)
}

func (r *PreferenceRepository) listSubscribers(ctx context.Context, column, value string) ([]preference.Subscriber, error) {
	query, args, err := qb.Select("u.id", "COALESCE(u.email, '') AS email", "u.email_notifications").
		From("user_preferences p").
		Join("users u ON u.id = p.user_id").
		Where(qb.Any(column, value)).
		OrderBy("u.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select subscribers query: %w", err)
	}

	var rows []subscriberRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select subscribers by %s: %w", column, err)
	}

	out := make([]preference.Subscriber, 0, len(rows))
	for _, row := range rows {
		out = append(out, preference.Subscriber{
			UserID:               row.UserID,
			Email:                row.Email,
			NotificationsEnabled: row.EmailNotifications,
		})
	}
	return out, nil
}

func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID string) (preference.UserPreference, bool, error) {
	query, args, err := qb.Select(
		"u.id",
		"u.email",
		"u.email_notifications",
		"COALESCE(p.games, '{}') AS games",
		"COALESCE(p.leagues, '{}') AS leagues",
		"u.updated_at AS user_updated_at",
		"p.updated_at AS pref_updated_at",
	).
		From("users u").
		LeftJoin("user_preferences p ON p.user_id = u.id").
		Where(qb.Eq("u.id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return preference.UserPreference{}, false, fmt.Errorf("build get preference query: %w", err)
	}

	var row userPreferenceRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return preference.UserPreference{}, false, nil
		}
		return preference.UserPreference{}, false, fmt.Errorf("get preference: %w", err)
	}

	games := make([]match.Game, 0, len(row.Games))
	for _, g := range row.Games {
		games = append(games, match.Game(g))
	}
	updatedAt := row.UserUpdatedAt
	if row.PrefUpdatedAt.Valid && row.PrefUpdatedAt.Time.After(updatedAt) {
		updatedAt = row.PrefUpdatedAt.Time
	}

	return preference.UserPreference{
		UserID:               row.UserID,
		Email:                row.Email.String,
		NotificationsEnabled: row.EmailNotifications,
		Games:                games,
		Leagues:              append([]string(nil), row.Leagues...),
		UpdatedAt:            updatedAt,
	}, true, nil
}

// Save writes the user row and its preference row in one transaction.
func (r *PreferenceRepository) Save(ctx context.Context, pref preference.UserPreference) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save preference: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	userQuery, userArgs, err := qb.InsertModel("users", userInsertModel{
		ID:                 pref.UserID,
		Email:              pref.Email,
		EmailNotifications: pref.NotificationsEnabled,
	}, `ON CONFLICT (id)
DO UPDATE SET
    email = EXCLUDED.email,
    email_notifications = EXCLUDED.email_notifications,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, userQuery, userArgs...); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	games := make([]string, 0, len(pref.Games))
	for _, g := range pref.Games {
		games = append(games, string(g))
	}
	prefQuery, prefArgs, err := qb.InsertModel("user_preferences", userPreferenceInsertModel{
		UserID:  pref.UserID,
		Games:   pq.StringArray(games),
		Leagues: pq.StringArray(nonNilStrings(pref.Leagues)),
	}, `ON CONFLICT (user_id)
DO UPDATE SET
    games = EXCLUDED.games,
    leagues = EXCLUDED.leagues,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert user preference query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, prefQuery, prefArgs...); err != nil {
		return fmt.Errorf("upsert user preference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save preference: %w", err)
	}
	return nil
}

// pq encodes a nil slice as NULL, which the NOT NULL array columns reject.
func nonNilStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var _ preference.Repository = (*PreferenceRepository)(nil)

