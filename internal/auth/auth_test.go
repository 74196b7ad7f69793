package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &entity.User{ID: "user-1", Email: "a@b.com", Role: entity.RoleAdmin}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	identity, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "a@b.com", identity.Email)
	assert.True(t, identity.IsAdmin())
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).Issue(&entity.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	token, err := NewTokenIssuer("secret", -time.Minute).Issue(&entity.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityContext(t *testing.T) {
	id := Identity{UserID: "user-1", Role: entity.RoleCustomer}
	ctx := WithIdentity(t.Context(), id)

	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.False(t, got.IsAdmin())

	_, ok = IdentityFromContext(t.Context())
	assert.False(t, ok)
}
