package api

import (
	"time"

	"tournament-backend/internal/model"
)

// JSON shapes returned by the API.

type playerView struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
}

type profileView struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	BirthDate *string `json:"birthDate"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
	Bio       *string `json:"bio"`
}

type userView struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Role      model.Role   `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
	Profile   *profileView `json:"profile"`
}

type teamView struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	CreatedAt       time.Time    `json:"createdAt"`
	Players         []playerView `json:"players"`
	NumberOfPlayers int          `json:"numberOfPlayers"`
}

type tournamentView struct {
	ID                      int64                  `json:"id"`
	Name                    string                 `json:"name"`
	Description             string                 `json:"description"`
	StartDate               string                 `json:"startDate"`
	EndDate                 string                 `json:"endDate"`
	MaxTeams                int                    `json:"maxTeams"`
	Status                  model.TournamentStatus `json:"status"`
	CreatedAt               time.Time              `json:"createdAt"`
	ParticipatingTeams      []teamView             `json:"participatingTeams"`
	NumberOfRegisteredTeams int                    `json:"numberOfRegisteredTeams"`
}

type matchView struct {
	ID             int64             `json:"id"`
	HomeTeamID     int64             `json:"homeTeamId"`
	AwayTeamID     int64             `json:"awayTeamId"`
	TournamentID   int64             `json:"tournamentId"`
	HomeTeamName   string            `json:"homeTeamName"`
	AwayTeamName   string            `json:"awayTeamName"`
	TournamentName string            `json:"tournamentName"`
	MatchDate      *string           `json:"matchDate"`
	HomeGoals      int               `json:"homeGoals"`
	AwayGoals      int               `json:"awayGoals"`
	Status         model.MatchStatus `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	Result         string            `json:"result"`
	WinnerID       *int64            `json:"winnerId"`
	WinnerName     *string           `json:"winnerName"`
}

type recordView struct {
	TournamentID int64 `json:"tournamentId"`
	TeamID       int64 `json:"teamId"`
	Played       int   `json:"played"`
	Wins         int   `json:"wins"`
	Draws        int   `json:"draws"`
	Losses       int   `json:"losses"`
}

type auditView struct {
	ID        int64     `json:"id"`
	ActorID   *int64    `json:"actorId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

func formatDate(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}
	s := t.Format(layout)
	return &s
}

func newUserView(u model.User) userView {
	v := userView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
	if p := u.Profile; p != nil {
		v.Profile = &profileView{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			BirthDate: formatDate(p.BirthDate, dateLayout),
			Phone:     p.Phone,
			City:      p.City,
			Bio:       p.Bio,
		}
	}
	return v
}

func newTeamView(t model.Team) teamView {
	v := teamView{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, Players: []playerView{}, NumberOfPlayers: t.NumberOfPlayers()}
	for _, p := range t.Players {
		v.Players = append(v.Players, playerView{ID: p.ID, Username: p.Username, Email: p.Email, Role: p.Role})
	}
	return v
}

func newTournamentView(t model.Tournament) tournamentView {
	v := tournamentView{
		ID:                      t.ID,
		Name:                    t.Name,
		Description:             t.Description,
		StartDate:               t.StartDate.Format(dateLayout),
		EndDate:                 t.EndDate.Format(dateLayout),
		MaxTeams:                t.MaxTeams,
		Status:                  t.Status,
		CreatedAt:               t.CreatedAt,
		ParticipatingTeams:      []teamView{},
		NumberOfRegisteredTeams: len(t.Teams),
	}
	for _, team := range t.Teams {
		v.ParticipatingTeams = append(v.ParticipatingTeams, newTeamView(team))
	}
	return v
}

func newMatchView(m model.Match) matchView {
	v := matchView{
		ID:             m.ID,
		HomeTeamID:     m.HomeTeam.ID,
		AwayTeamID:     m.AwayTeam.ID,
		TournamentID:   m.Tournament.ID,
		HomeTeamName:   m.HomeTeam.Name,
		AwayTeamName:   m.AwayTeam.Name,
		TournamentName: m.Tournament.Name,
		MatchDate:      formatDate(m.MatchDate, localTimeLayout),
		HomeGoals:      m.HomeGoals,
		AwayGoals:      m.AwayGoals,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		Result:         m.Result(),
	}
	if w := m.Winner(); w != nil {
		v.WinnerID, v.WinnerName = &w.ID, &w.Name
	}
	return v
}

func mapViews[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}
