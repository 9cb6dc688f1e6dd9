package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/services"
	"github.com/example/account-service/internal/worker"
)

type sentMail struct{ email, token string }

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{email: email, token: token})
	return nil
}

func (m *captureMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func newTestResets(users *memUsers) (*services.ResetService, *captureMailer, *worker.Pool) {
	mail := &captureMailer{}
	wp := worker.NewPool(1)
	svc := services.NewResetService(users, &memAudit{}, mail, wp, time.Hour)
	return svc, mail, wp
}

func TestResetFlow_SingleUse(t *testing.T) {
	accounts, users, _, _ := newTestAccounts()
	resets, mail, wp := newTestResets(users)
	ctx := context.Background()
	registerAlice(t, accounts)

	require.NoError(t, resets.RequestReset(ctx, "alice@x.com"))
	wp.Stop() // drain the dispatch queue

	sent := mail.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@x.com", sent[0].email)
	token := sent[0].token
	require.NotEmpty(t, token)
	assert.Equal(t, token, users.resetTokenFor("alice@x.com"), "the delivered token is the stored token")

	require.NoError(t, resets.ConsumeReset(ctx, token, "newpass1"))

	// password actually changed
	_, _, err := accounts.Login(ctx, "alice", "newpass1")
	assert.NoError(t, err)
	_, _, err = accounts.Login(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	// the token is spent
	err = resets.ConsumeReset(ctx, token, "again123")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestResetFlow_Expired(t *testing.T) {
	accounts, users, _, _ := newTestAccounts()
	resets, mail, wp := newTestResets(users)
	ctx := context.Background()
	registerAlice(t, accounts)

	require.NoError(t, resets.RequestReset(ctx, "alice@x.com"))
	wp.Stop()
	token := mail.all()[0].token

	users.expire("alice@x.com")

	err := resets.ConsumeReset(ctx, token, "newpass1")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredToken)
}

func TestResetFlow_OverwritesPriorToken(t *testing.T) {
	accounts, users, _, _ := newTestAccounts()
	resets, mail, wp := newTestResets(users)
	ctx := context.Background()
	registerAlice(t, accounts)

	require.NoError(t, resets.RequestReset(ctx, "alice@x.com"))
	require.NoError(t, resets.RequestReset(ctx, "alice@x.com"))
	wp.Stop()

	sent := mail.all()
	require.Len(t, sent, 2)
	assert.NotEqual(t, sent[0].token, sent[1].token)

	// only the newest token works
	assert.ErrorIs(t, resets.ConsumeReset(ctx, sent[0].token, "newpass1"), apperr.ErrInvalidOrExpiredToken)
	assert.NoError(t, resets.ConsumeReset(ctx, sent[1].token, "newpass1"))
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	_, users, _, _ := newTestAccounts()
	resets, mail, wp := newTestResets(users)

	// unknown address: same success shape, nothing stored, nothing sent
	require.NoError(t, resets.RequestReset(context.Background(), "ghost@x.com"))
	wp.Stop()
	assert.Empty(t, mail.all())
}

func TestConsumeReset_BadInputs(t *testing.T) {
	accounts, users, _, _ := newTestAccounts()
	resets, mail, wp := newTestResets(users)
	ctx := context.Background()
	registerAlice(t, accounts)

	assert.ErrorIs(t, resets.ConsumeReset(ctx, "", "newpass1"), apperr.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, resets.ConsumeReset(ctx, "no-such-token", "newpass1"), apperr.ErrInvalidOrExpiredToken)

	require.NoError(t, resets.RequestReset(ctx, "alice@x.com"))
	wp.Stop()
	token := mail.all()[0].token

	// a weak replacement password is rejected and the token survives
	err := resets.ConsumeReset(ctx, token, "short")
	assert.Error(t, err)
	assert.NoError(t, resets.ConsumeReset(ctx, token, "newpass1"))
}
