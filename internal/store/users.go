package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"tournament-backend/internal/model"
)

type scanner interface {
	Scan(dest ...any) error
}

var userColumns = []string{"u.id", "u.username", "u.email", "u.password_hash", "u.role", "u.created_at"}

func scanUser(s scanner) (model.User, error) {
	var u model.User
	var role string
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (q *Queries) selectUsers() sq.SelectBuilder {
	return q.sb.Select(userColumns...).From("users u")
}

func (q *Queries) listUsers(ctx context.Context, b sq.SelectBuilder) ([]model.User, error) {
	rows, err := q.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) getUser(ctx context.Context, where sq.Sqlizer) (model.User, error) {
	query, args, err := q.selectUsers().Where(where).ToSql()
	if err != nil {
		return model.User{}, err
	}
	u, err := scanUser(q.tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// CreateUser inserts u and assigns its id.
func (q *Queries) CreateUser(ctx context.Context, u *model.User) error {
	u.CreatedAt = ts(u.CreatedAt)
	return q.row(ctx, q.sb.Insert("users").
		Columns("username", "email", "password_hash", "role", "created_at").
		Values(u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt).
		Suffix("RETURNING id"), &u.ID)
}

func (q *Queries) GetUser(ctx context.Context, id int64) (model.User, error) {
	return q.getUser(ctx, sq.Eq{"u.id": id})
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return q.getUser(ctx, sq.Eq{"u.username": username})
}

func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("users").Where(sq.Eq{"id": id}))
}

func (q *Queries) UsernameExists(ctx context.Context, username string) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("users").Where(sq.Eq{"username": username}))
}

func (q *Queries) EmailExists(ctx context.Context, email string) (bool, error) {
	return q.exists(ctx, q.sb.Select().From("users").Where(sq.Eq{"email": email}))
}

func (q *Queries) UpdateUser(ctx context.Context, u model.User) error {
	res, err := q.exec(ctx, q.sb.Update("users").
		Set("username", u.Username).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("role", string(u.Role)).
		Where(sq.Eq{"id": u.ID}))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOne(res)
}

// DeleteUser removes the user; profile and roster rows cascade.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, q.sb.Delete("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(res)
}

func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	return q.listUsers(ctx, q.selectUsers().OrderBy("u.id"))
}

// SearchUsers matches keyword against username or email, ignoring case.
func (q *Queries) SearchUsers(ctx context.Context, keyword string) ([]model.User, error) {
	p := likePattern(keyword)
	return q.listUsers(ctx, q.selectUsers().
		Where(sq.Or{
			containsIgnoreCase("u.username", p),
			containsIgnoreCase("u.email", p),
		}).
		OrderBy("u.id"))
}

/* ===================== PROFILES ===================== */

func (q *Queries) GetProfile(ctx context.Context, userID int64) (model.Profile, error) {
	var p model.Profile
	var first, last, phone, city, bio sql.NullString
	var birth sql.NullTime
	err := q.row(ctx, q.sb.
		Select("id", "user_id", "first_name", "last_name", "birth_date", "phone", "city", "bio").
		From("profiles").
		Where(sq.Eq{"user_id": userID}),
		&p.ID, &p.UserID, &first, &last, &birth, &phone, &city, &bio)
	if err != nil {
		return model.Profile{}, err
	}
	p.FirstName = fromNullString(first)
	p.LastName = fromNullString(last)
	p.BirthDate = fromNullTime(birth)
	p.Phone = fromNullString(phone)
	p.City = fromNullString(city)
	p.Bio = fromNullString(bio)
	return p, nil
}

// SaveProfile inserts p when it has no id yet, otherwise overwrites it.
func (q *Queries) SaveProfile(ctx context.Context, p *model.Profile) error {
	if p.ID == 0 {
		return q.row(ctx, q.sb.Insert("profiles").
			Columns("user_id", "first_name", "last_name", "birth_date", "phone", "city", "bio").
			Values(p.UserID, toNullString(p.FirstName), toNullString(p.LastName), toNullDate(p.BirthDate),
				toNullString(p.Phone), toNullString(p.City), toNullString(p.Bio)).
			Suffix("RETURNING id"), &p.ID)
	}
	res, err := q.exec(ctx, q.sb.Update("profiles").
		Set("first_name", toNullString(p.FirstName)).
		Set("last_name", toNullString(p.LastName)).
		Set("birth_date", toNullDate(p.BirthDate)).
		Set("phone", toNullString(p.Phone)).
		Set("city", toNullString(p.City)).
		Set("bio", toNullString(p.Bio)).
		Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
