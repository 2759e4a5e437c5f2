package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
)

func TestPreferenceRepository_Lookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPreferenceRepository([]preference.UserPreference{
		{UserID: "u2", Email: "b@example.com", NotificationsEnabled: true, Games: []match.Game{match.GameLoL}, Leagues: []string{"lec"}},
		{UserID: "u1", Email: "a@example.com", NotificationsEnabled: false, Games: []match.Game{match.GameLoL, match.GameValorant}},
		{UserID: "", Email: "ghost@example.com", Games: []match.Game{match.GameLoL}},
	})

	byGame, err := repo.ListSubscribersByGame(ctx, match.GameLoL)
	if err != nil {
		t.Fatalf("list by game: %v", err)
	}
	if len(byGame) != 2 || byGame[0].UserID != "u1" || byGame[1].UserID != "u2" {
		t.Fatalf("unexpected subscribers by game: %+v", byGame)
	}
	if byGame[0].Reachable() {
		t.Fatalf("disabled subscriber must be returned but not reachable")
	}

	byLeague, _ := repo.ListSubscribersByLeague(ctx, " LEC ")
	if len(byLeague) != 1 || byLeague[0].UserID != "u2" {
		t.Fatalf("unexpected subscribers by league: %+v", byLeague)
	}
	if empty, _ := repo.ListSubscribersByLeague(ctx, ""); len(empty) != 0 {
		t.Fatalf("expected no subscribers for empty slug")
	}
}

func TestPreferenceRepository_SaveIsolatesCallerSlices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPreferenceRepository(nil)
	games := []match.Game{match.GameCSGO}
	if err := repo.Save(ctx, preference.UserPreference{UserID: "u1", Email: "a@example.com", Games: games}); err != nil {
		t.Fatalf("save: %v", err)
	}
	games[0] = match.GameRL

	got, ok, err := repo.GetByUserID(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if got.Games[0] != match.GameCSGO {
		t.Fatalf("stored preference must not alias caller slice")
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
	if _, ok, _ := repo.GetByUserID(ctx, "missing"); ok {
		t.Fatalf("expected missing user")
	}
}
