package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/model"
)

func TestPassword(t *testing.T) {
	long := strings.Repeat("a", 100)
	hash, err := HashPassword(long)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, long))
	// Differs only past bcrypt's 72-byte limit.
	assert.False(t, CheckPassword(hash, long[:99]+"b"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	assert.ErrorIs(t, ValidatePassword("1234567"), ErrWeakPassword)
	// Counted in characters, not bytes.
	assert.ErrorIs(t, ValidatePassword("ééééééé"), ErrWeakPassword)
}

func TestTokenIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", "docrag", time.Hour)
	require.NoError(t, err)
	user := model.User{ID: model.NewID(), Email: "a@example.org"}

	tok, exp, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	actor, err := issuer.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, user.Email, actor.Email)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewTokenIssuer("secret", "docrag", time.Hour)
	require.NoError(t, err)
	user := model.User{ID: model.NewID()}

	other, err := NewTokenIssuer("other-secret", "docrag", time.Hour)
	require.NoError(t, err)
	forged, _, err := other.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	tok, _, err := issuer.Issue(user)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = issuer.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", "docrag", time.Hour)
	assert.Error(t, err)
}
