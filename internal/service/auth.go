package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
	"tournament-backend/internal/store"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u model.User) (string, error)
}

type AuthService struct {
	base
	users   *UserService
	encoder PasswordEncoder
	tokens  TokenIssuer
}

func NewAuthService(d Deps, users *UserService, encoder PasswordEncoder, tokens TokenIssuer) *AuthService {
	return &AuthService{base: newBase(d), users: users, encoder: encoder, tokens: tokens}
}

// Register creates a ROLE_USER account.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	return s.users.CreateUser(ctx, CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     model.RoleUser,
	})
}

// Login checks the credentials and issues a token. Unknown users and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := run(ctx, s.store, func(q *store.Queries) (model.User, error) {
		return q.GetUserByUsername(ctx, username)
	})
	if errors.Is(err, store.ErrNotFound) || (err == nil && !s.encoder.Matches(u.PasswordHash, password)) {
		log.Warn().Str("username", username).Msg("login failed")
		return LoginResult{}, apperrors.ErrAuthenticationFailed
	}
	if err != nil {
		return LoginResult{}, err
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return LoginResult{}, err
	}
	log.Info().Int64("user_id", u.ID).Msg("login")
	return LoginResult{Token: token, User: u}, nil
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context) (model.User, error) {
	p, err := auth.Require(ctx, auth.Authenticated)
	if err != nil {
		return model.User{}, err
	}
	return s.users.GetUserByUsername(ctx, p.Username)
}
