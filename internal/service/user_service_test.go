package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-ecommerce-backend/internal/auth"
	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
)

func newUserFixture() *UserService {
	store := newFakeStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewUserService(&fakeUserRepo{store: store}, tokens)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserFixture()

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:     "alice@example.com",
		Password:  "secret123",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "alice@example.com", registered.User.Email)

	loggedIn, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserFixture()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "other"})
	require.ErrorIs(t, err, entity.ErrEmailTaken)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newUserFixture()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@b.com", "wrong")
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "unknown@b.com", "pw123456")
	require.ErrorIs(t, err, entity.ErrInvalidCredentials,
		"unknown email must look identical to a wrong password")
}
