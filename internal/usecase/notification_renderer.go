package usecase

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

const reminderTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f9fafb;font-family:Arial,Helvetica,sans-serif;color:#111827;">
<div style="max-width:600px;margin:0 auto;padding:24px;background:#ffffff;">
  <h1 style="font-size:22px;color:#6d28d9;">Upcoming match: {{.Team1}} vs {{.Team2}}</h1>
  <p>Your match starts in a few minutes.</p>
  <div style="background:#f3f4f6;border-radius:8px;padding:16px;margin:16px 0;">
    <p style="margin:4px 0;"><strong>Competition:</strong> {{.League}}</p>
    <p style="margin:4px 0;"><strong>Date:</strong> {{.Date}}</p>
    <p style="margin:4px 0;"><strong>Game:</strong> {{.Game}}</p>
    {{- if .StreamURL}}
    <p style="margin:4px 0;"><a href="{{.StreamURL}}" style="color:#6d28d9;">Watch the stream</a></p>
    {{- end}}
  </div>
  <p><a href="{{.CalendarURL}}" style="display:inline-block;padding:10px 18px;background:#6d28d9;color:#ffffff;border-radius:6px;text-decoration:none;">Open the calendar</a></p>
  <hr style="border:none;border-top:1px solid #e5e7eb;margin:24px 0;">
  <p style="font-size:12px;color:#6b7280;">You receive this email because you follow {{.Game}} or {{.League}}. <a href="{{.SettingsURL}}" style="color:#6b7280;">Manage your notification settings</a>.</p>
  <p style="font-size:12px;color:#6b7280;">Questions? Contact us at <a href="mailto:{{.SupportEmail}}" style="color:#6b7280;">{{.SupportEmail}}</a>.</p>
</div>
</body>
</html>
`

type ReminderRendererConfig struct {
	SiteURL      string
	SupportEmail string
	Location     *time.Location
}

// RenderedEmail is the subject and HTML body of one reminder.
type RenderedEmail struct {
	Subject string
	HTML    string
}

// ReminderRenderer renders reminder emails. It is safe for concurrent use.
type ReminderRenderer struct {
	tmpl *template.Template
	cfg  ReminderRendererConfig
}

type reminderView struct {
	Team1        string
	Team2        string
	League       string
	Game         string
	Date         string
	StreamURL    string
	CalendarURL  string
	SettingsURL  string
	SupportEmail string
}

func NewReminderRenderer(cfg ReminderRendererConfig) *ReminderRenderer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	return &ReminderRenderer{
		tmpl: template.Must(template.New("reminder").Parse(reminderTemplate)),
		cfg:  cfg,
	}
}

func (r *ReminderRenderer) Render(m match.Match) (RenderedEmail, error) {
	view := reminderView{
		Team1:        fallback(m.Team1.Name, "Team 1"),
		Team2:        fallback(m.Team2.Name, "Team 2"),
		League:       fallback(m.LeagueName, "unknown competition"),
		Game:         fallback(m.GameName, fallback(string(m.Game), "unknown game")),
		Date:         r.formatDate(m.ScheduledAt),
		StreamURL:    m.StreamURL,
		CalendarURL:  r.cfg.SiteURL + "/calendar",
		SettingsURL:  r.cfg.SiteURL + "/settings",
		SupportEmail: r.cfg.SupportEmail,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return RenderedEmail{}, fmt.Errorf("render reminder for match %d: %w", m.ID, err)
	}
	return RenderedEmail{
		Subject: view.Team1 + " vs " + view.Team2 + " starts soon!",
		HTML:    buf.String(),
	}, nil
}

func (r *ReminderRenderer) formatDate(at time.Time) string {
	if at.IsZero() {
		return "date unavailable"
	}
	return at.In(r.cfg.Location).Format("Monday, January 2, 2006 at 15:04 MST")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
