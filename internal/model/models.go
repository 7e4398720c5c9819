package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	Profile      *Profile
}

// Profile is the optional 1:1 extension of a User. Nil fields are unset.
type Profile struct {
	ID        int64
	UserID    int64
	FirstName *string
	LastName  *string
	BirthDate *time.Time
	Phone     *string
	City      *string
	Bio       *string
}

// Ref identifies a team or tournament by id and display name.
type Ref struct {
	ID   int64
	Name string
}

type Team struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Players   []User
}

func (t Team) NumberOfPlayers() int {
	return len(t.Players)
}

type TournamentStatus string

const (
	TournamentOpen       TournamentStatus = "OPEN"
	TournamentScheduled  TournamentStatus = "SCHEDULED"
	TournamentInProgress TournamentStatus = "IN_PROGRESS"
	TournamentCompleted  TournamentStatus = "COMPLETED"
	TournamentCancelled  TournamentStatus = "CANCELLED"
)

// DefaultMaxTeams applies when a tournament is created without a capacity.
const DefaultMaxTeams = 16

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentOpen, TournamentScheduled, TournamentInProgress, TournamentCompleted, TournamentCancelled:
		return true
	}
	return false
}

type Tournament struct {
	ID          int64
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	MaxTeams    int
	Status      TournamentStatus
	CreatedAt   time.Time
	Teams       []Team
}

type MatchStatus string

const (
	MatchScheduled     MatchStatus = "SCHEDULED"
	MatchInProgress    MatchStatus = "IN_PROGRESS"
	MatchCompleted     MatchStatus = "COMPLETED"
	MatchPostponed     MatchStatus = "POSTPONED"
	MatchCancelled     MatchStatus = "CANCELLED"
	MatchToBeScheduled MatchStatus = "TO_BE_SCHEDULED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchInProgress, MatchCompleted, MatchPostponed, MatchCancelled, MatchToBeScheduled:
		return true
	}
	return false
}

type Match struct {
	ID         int64
	HomeTeam   Ref
	AwayTeam   Ref
	Tournament Ref
	MatchDate  *time.Time
	HomeGoals  int
	AwayGoals  int
	Status     MatchStatus
	CreatedAt  time.Time
}

// Result renders the score of a completed match.
func (m Match) Result() string {
	if m.Status != MatchCompleted {
		return "Not played"
	}
	return fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
}

// Winner returns the winning team of a completed match, nil on a draw or
// when the match has not been completed.
func (m Match) Winner() *Ref {
	if m.Status != MatchCompleted {
		return nil
	}
	switch {
	case m.HomeGoals > m.AwayGoals:
		w := m.HomeTeam
		return &w
	case m.AwayGoals > m.HomeGoals:
		w := m.AwayTeam
		return &w
	}
	return nil
}

// TeamRecord counts completed match outcomes for one team in a tournament.
type TeamRecord struct {
	TournamentID int64
	TeamID       int64
	Played       int
	Wins         int
	Draws        int
	Losses       int
}

type AuditEntry struct {
	ID        int64
	ActorID   *int64
	Action    string
	Details   string
	CreatedAt time.Time
}
