package service

import (
	"time"

	"tournament-backend/internal/model"
)

// Update inputs use nil for "leave unchanged".

type CreateTeamInput struct {
	Name string
}

type UpdateTeamInput struct {
	Name *string
}

type CreateTournamentInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	MaxTeams    *int
	Status      *model.TournamentStatus
}

type UpdateTournamentInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	MaxTeams    *int
	Status      *model.TournamentStatus
}

type CreateMatchInput struct {
	HomeTeamID   int64
	AwayTeamID   int64
	TournamentID int64
	MatchDate    *time.Time
	HomeGoals    *int
	AwayGoals    *int
	Status       *model.MatchStatus
}

type UpdateMatchInput struct {
	MatchDate *time.Time
	HomeGoals *int
	AwayGoals *int
	Status    *model.MatchStatus
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     model.Role
}

type UpdateUserInput struct {
	Username *string
	Email    *string
	Role     *model.Role
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	BirthDate *time.Time
	Phone     *string
	City      *string
	Bio       *string
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string
	User  model.User
}
