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

// PasswordEncoder hashes and verifies user passwords.
type PasswordEncoder interface {
	Encode(plain string) (string, error)
	Matches(hash, plain string) bool
}

type UserService struct {
	base
	encoder PasswordEncoder
}

func NewUserService(d Deps, encoder PasswordEncoder) *UserService {
	return &UserService{base: newBase(d), encoder: encoder}
}

// withProfile attaches the user's profile when one exists.
func withProfile(ctx context.Context, q *store.Queries, u model.User) (model.User, error) {
	p, err := q.GetProfile(ctx, u.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return u, nil
	case err != nil:
		return model.User{}, err
	}
	u.Profile = &p
	return u, nil
}

// userConflict maps a unique violation on users to the column that collided.
func userConflict(err error) error {
	switch {
	case store.ConflictOn(err, "email"):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, store.ErrConflict):
		return apperrors.ErrUsernameAlreadyExists
	}
	return err
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return nil, err
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.User, error) {
		return q.ListUsers(ctx)
	})
}

func (s *UserService) GetUser(ctx context.Context, id int64) (model.User, error) {
	if _, err := auth.Require(ctx, auth.SelfOrAdmin(id)); err != nil {
		return model.User{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.User, error) {
		u, err := q.GetUser(ctx, id)
		if err != nil {
			return model.User{}, notFound(err, apperrors.ErrUserNotFound)
		}
		return withProfile(ctx, q, u)
	})
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	if _, err := auth.Require(ctx, auth.SelfOrAdminByName(username)); err != nil {
		return model.User{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.User, error) {
		u, err := q.GetUserByUsername(ctx, username)
		if err != nil {
			return model.User{}, notFound(err, apperrors.ErrUserNotFound)
		}
		return withProfile(ctx, q, u)
	})
}

// CreateUser stores a new account. Anyone may create a ROLE_USER account;
// ROLE_ADMIN accounts require an admin caller.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !in.Role.Valid() {
		return model.User{}, apperrors.Validation("Validation failed", map[string]string{"role": "must be ROLE_USER or ROLE_ADMIN"})
	}
	if in.Role == model.RoleAdmin {
		if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
			return model.User{}, err
		}
	}
	hash, err := s.encoder.Encode(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u, err := run(ctx, s.store, func(q *store.Queries) (model.User, error) {
		taken, err := q.UsernameExists(ctx, in.Username)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, apperrors.ErrUsernameAlreadyExists
		}
		if taken, err = q.EmailExists(ctx, in.Email); err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, apperrors.ErrEmailAlreadyExists
		}
		u := model.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         in.Role,
			CreatedAt:    s.now(),
		}
		if err := q.CreateUser(ctx, &u); err != nil {
			return model.User{}, userConflict(err)
		}
		return u, s.audit(ctx, q, "user.create", "user %d %q %s", u.ID, u.Username, u.Role)
	})
	if err != nil {
		return model.User{}, err
	}
	log.Info().Int64("user_id", u.ID).Str("username", u.Username).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (model.User, error) {
	p, err := auth.Require(ctx, auth.SelfOrAdmin(id))
	if err != nil {
		return model.User{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.User, error) {
		u, err := q.GetUser(ctx, id)
		if err != nil {
			return model.User{}, notFound(err, apperrors.ErrUserNotFound)
		}
		if in.Username != nil && *in.Username != u.Username {
			taken, err := q.UsernameExists(ctx, *in.Username)
			if err != nil {
				return model.User{}, err
			}
			if taken {
				return model.User{}, apperrors.ErrUsernameAlreadyExists
			}
			u.Username = *in.Username
		}
		if in.Email != nil && *in.Email != u.Email {
			taken, err := q.EmailExists(ctx, *in.Email)
			if err != nil {
				return model.User{}, err
			}
			if taken {
				return model.User{}, apperrors.ErrEmailAlreadyExists
			}
			u.Email = *in.Email
		}
		if in.Role != nil && *in.Role != u.Role {
			if !p.IsAdmin() {
				return model.User{}, apperrors.ErrUnauthorizedOperation
			}
			u.Role = *in.Role
		}
		if err := q.UpdateUser(ctx, u); err != nil {
			return model.User{}, userConflict(err)
		}
		if err := s.audit(ctx, q, "user.update", "user %d", id); err != nil {
			return model.User{}, err
		}
		return withProfile(ctx, q, u)
	})
}

// UpdateProfile creates the profile on first use and applies the non-nil
// fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (model.User, error) {
	if _, err := auth.Require(ctx, auth.SelfOrAdmin(userID)); err != nil {
		return model.User{}, err
	}
	return run(ctx, s.store, func(q *store.Queries) (model.User, error) {
		u, err := q.GetUser(ctx, userID)
		if err != nil {
			return model.User{}, notFound(err, apperrors.ErrUserNotFound)
		}
		p, err := q.GetProfile(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			p, err = model.Profile{UserID: userID}, nil
		}
		if err != nil {
			return model.User{}, err
		}
		if in.FirstName != nil {
			p.FirstName = in.FirstName
		}
		if in.LastName != nil {
			p.LastName = in.LastName
		}
		if in.BirthDate != nil {
			d := dateOnly(*in.BirthDate)
			p.BirthDate = &d
		}
		if in.Phone != nil {
			p.Phone = in.Phone
		}
		if in.City != nil {
			p.City = in.City
		}
		if in.Bio != nil {
			p.Bio = in.Bio
		}
		if err := q.SaveProfile(ctx, &p); err != nil {
			return model.User{}, err
		}
		if err := s.audit(ctx, q, "user.update_profile", "user %d", userID); err != nil {
			return model.User{}, err
		}
		u.Profile = &p
		return u, nil
	})
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return err
	}
	return s.store.Run(ctx, func(q *store.Queries) error {
		exists, err := q.UserExists(ctx, id)
		if err := mustExist(exists, err, apperrors.ErrUserNotFound); err != nil {
			return err
		}
		// Audit first: an admin deleting their own account is the actor, and
		// the delete then clears actor_id.
		if err := s.audit(ctx, q, "user.delete", "user %d", id); err != nil {
			return err
		}
		return notFound(q.DeleteUser(ctx, id), apperrors.ErrUserNotFound)
	})
}

func (s *UserService) SearchUsers(ctx context.Context, keyword string) ([]model.User, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return nil, err
	}
	if blank(keyword) {
		return nil, apperrors.ErrEmptySearchKeyword
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.User, error) {
		return q.SearchUsers(ctx, keyword)
	})
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return run(ctx, s.store, func(q *store.Queries) (bool, error) {
		return q.UsernameExists(ctx, username)
	})
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return run(ctx, s.store, func(q *store.Queries) (bool, error) {
		return q.EmailExists(ctx, email)
	})
}

// LoadPrincipal resolves the identity behind a verified token subject.
func (s *UserService) LoadPrincipal(ctx context.Context, username string) (auth.Principal, error) {
	return run(ctx, s.store, func(q *store.Queries) (auth.Principal, error) {
		u, err := q.GetUserByUsername(ctx, username)
		if err != nil {
			return auth.Principal{}, notFound(err, apperrors.ErrUserNotFound)
		}
		return auth.Principal{ID: u.ID, Username: u.Username, Role: u.Role}, nil
	})
}
