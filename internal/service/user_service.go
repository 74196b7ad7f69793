package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-ecommerce-backend/internal/auth"
	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

// RegisterInput carries the registration fields, already shape-validated by
// the HTTP layer.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	AccessToken string             `json:"access_token"`
	User        entity.UserSummary `json:"user"`
}

// UserService handles registration and login. Everything past the issued
// token is the auth middleware's problem.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenIssuer) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a customer account and returns a fresh token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, &entity.BadRequestError{Reason: "email and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         entity.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("Service: User registered", "user_id", user.ID, "email", user.Email)
	return s.respond(user)
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	var notFound *entity.NotFoundError
	if errors.As(err, &notFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, entity.ErrInvalidCredentials
	}
	return s.respond(user)
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) respond(user *entity.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{AccessToken: token, User: user.Summary()}, nil
}
