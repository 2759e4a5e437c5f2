package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
	"github.com/riskibarqy/esport-notifier/internal/domain/preference"
	"github.com/riskibarqy/esport-notifier/internal/domain/user"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

const maxPreferenceLeagues = 200

// SubscriberCacheInvalidator drops cached subscriber lookups after a preference write.
type SubscriberCacheInvalidator interface {
	InvalidateSubscribers(ctx context.Context)
}

type SavePreferenceInput struct {
	Games              []string `json:"games"`
	Leagues            []string `json:"leagues"`
	EmailNotifications *bool    `json:"email_notifications"`
}

type PreferenceView struct {
	UserID             string       `json:"userId"`
	Email              string       `json:"email"`
	EmailNotifications bool         `json:"email_notifications"`
	Games              []match.Game `json:"games"`
	Leagues            []string     `json:"leagues"`
	UpdatedAt          *time.Time   `json:"updatedAt,omitempty"`
}

type PreferenceServiceConfig struct {
	FromAddress string
	// SendConfirmation mails the user after each successful save.
	SendConfirmation bool
}

type PreferenceService struct {
	repo        preference.Repository
	invalidator SubscriberCacheInvalidator
	sender      EmailSender
	cfg         PreferenceServiceConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewPreferenceService(repo preference.Repository, invalidator SubscriberCacheInvalidator, sender EmailSender, cfg PreferenceServiceConfig, logger *logging.Logger) *PreferenceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PreferenceService{
		repo:        repo,
		invalidator: invalidator,
		sender:      sender,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Get returns the stored preferences, or the defaults for a user who never saved.
func (s *PreferenceService) Get(ctx context.Context, principal user.Principal) (PreferenceView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreferenceService.Get")
	defer span.End()

	if strings.TrimSpace(principal.UserID) == "" {
		return PreferenceView{}, fmt.Errorf("%w: missing principal", ErrUnauthorized)
	}

	pref, found, err := s.repo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		return PreferenceView{}, fmt.Errorf("get preferences: %w", err)
	}
	if !found {
		return PreferenceView{
			UserID:             principal.UserID,
			Email:              principal.Email,
			EmailNotifications: true,
			Games:              []match.Game{},
			Leagues:            []string{},
		}, nil
	}
	return toPreferenceView(pref), nil
}

// Save validates and stores the caller's preferences. The caller's email comes
// from the verified principal, never from the request body.
func (s *PreferenceService) Save(ctx context.Context, principal user.Principal, input SavePreferenceInput) (PreferenceView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreferenceService.Save")
	defer span.End()

	if strings.TrimSpace(principal.UserID) == "" {
		return PreferenceView{}, fmt.Errorf("%w: missing principal", ErrUnauthorized)
	}

	games, err := match.ParseGames(compactStrings(input.Games))
	if err != nil {
		return PreferenceView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	leagues := normalizeLeagueSlugs(input.Leagues)
	if len(leagues) > maxPreferenceLeagues {
		return PreferenceView{}, fmt.Errorf("%w: at most %d leagues can be followed", ErrInvalidInput, maxPreferenceLeagues)
	}

	enabled := true
	if input.EmailNotifications != nil {
		enabled = *input.EmailNotifications
	} else {
		existing, found, err := s.repo.GetByUserID(ctx, principal.UserID)
		if err != nil {
			return PreferenceView{}, fmt.Errorf("get preferences: %w", err)
		}
		if found {
			enabled = existing.NotificationsEnabled
		}
	}

	pref := preference.UserPreference{
		UserID:               principal.UserID,
		Email:                strings.TrimSpace(principal.Email),
		NotificationsEnabled: enabled,
		Games:                games,
		Leagues:              leagues,
		UpdatedAt:            s.now().UTC(),
	}
	if err := s.repo.Save(ctx, pref); err != nil {
		return PreferenceView{}, fmt.Errorf("save preferences: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateSubscribers(ctx)
	}

	s.logger.InfoContext(ctx, "preferences saved",
		"user_id", pref.UserID,
		"games", len(pref.Games),
		"leagues", len(pref.Leagues),
		"email_notifications", pref.NotificationsEnabled,
	)
	s.sendConfirmation(ctx, pref)
	return toPreferenceView(pref), nil
}

// sendConfirmation is best effort; a failed mail never fails the save.
func (s *PreferenceService) sendConfirmation(ctx context.Context, pref preference.UserPreference) {
	if !s.cfg.SendConfirmation || s.sender == nil || pref.Email == "" || !pref.NotificationsEnabled {
		return
	}
	_, err := s.sender.Send(ctx, Email{
		From:    s.cfg.FromAddress,
		To:      []string{pref.Email},
		Subject: "Your notification preferences were updated",
		HTML:    "<p>Your esports match reminders are now configured. You will receive an email a few minutes before the matches you follow start.</p>",
	})
	if err != nil {
		s.logger.WarnContext(ctx, "preference confirmation not sent", "user_id", pref.UserID, "error", err)
	}
}

func normalizeLeagueSlugs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range compactStrings(raw) {
		slug := strings.ToLower(item)
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

func toPreferenceView(pref preference.UserPreference) PreferenceView {
	view := PreferenceView{
		UserID:             pref.UserID,
		Email:              pref.Email,
		EmailNotifications: pref.NotificationsEnabled,
		Games:              pref.Games,
		Leagues:            pref.Leagues,
	}
	if view.Games == nil {
		view.Games = []match.Game{}
	}
	if view.Leagues == nil {
		view.Leagues = []string{}
	}
	if !pref.UpdatedAt.IsZero() {
		updated := pref.UpdatedAt
		view.UpdatedAt = &updated
	}
	return view
}
