// Package mailer is the out-of-band delivery collaborator for reset
// tokens. The token must reach the user through here and never through
// the HTTP response that requested it.
package mailer

import (
	"context"
	"log/slog"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer stands in for a real provider outside prod: it writes the
// reset link to the server log only.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.Log.Info("password reset issued", "email", email, "reset_url", "/reset-password?token="+token)
	return nil
}
