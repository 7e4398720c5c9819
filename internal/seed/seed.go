// Package seed loads YAML fixtures and applies them through the services.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"tournament-backend/internal/auth"
	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
	"tournament-backend/internal/service"
)

type Fixture struct {
	Users       []User       `yaml:"users"`
	Teams       []Team       `yaml:"teams"`
	Tournaments []Tournament `yaml:"tournaments"`
}

type User struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type Team struct {
	Name    string   `yaml:"name"`
	Players []string `yaml:"players"`
}

type Tournament struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	StartDate   string   `yaml:"start_date"`
	EndDate     string   `yaml:"end_date"`
	MaxTeams    int      `yaml:"max_teams"`
	Status      string   `yaml:"status"`
	Teams       []string `yaml:"teams"`
}

// Summary counts what Apply created and skipped.
type Summary struct {
	Users       int
	Teams       int
	Tournaments int
	Skipped     int
}

type Services struct {
	Users       *service.UserService
	Teams       *service.TeamService
	Tournaments *service.TournamentService
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// Apply creates users, then teams with their rosters, then tournaments with
// their registrations. Entries whose username or name already exists are
// skipped, so applying the same fixture twice is harmless.
func Apply(ctx context.Context, svc Services, f *Fixture) (Summary, error) {
	ctx = auth.System(ctx)
	var sum Summary

	for _, u := range f.Users {
		exists, err := svc.Users.ExistsByUsername(ctx, u.Username)
		if err != nil {
			return sum, err
		}
		if exists {
			sum.Skipped++
			continue
		}
		role := model.Role(u.Role)
		if u.Role == "" {
			role = model.RoleUser
		}
		if _, err := svc.Users.CreateUser(ctx, service.CreateUserInput{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Role:     role,
		}); err != nil {
			return sum, fmt.Errorf("user %s: %w", u.Username, err)
		}
		sum.Users++
	}

	for _, t := range f.Teams {
		team, err := svc.Teams.GetTeamByName(ctx, t.Name)
		switch {
		case errors.Is(err, apperrors.ErrTeamNotFound):
			if team, err = svc.Teams.CreateTeam(ctx, service.CreateTeamInput{Name: t.Name}); err != nil {
				return sum, fmt.Errorf("team %s: %w", t.Name, err)
			}
			sum.Teams++
		case err != nil:
			return sum, err
		default:
			sum.Skipped++
		}
		for _, username := range t.Players {
			u, err := svc.Users.GetUserByUsername(ctx, username)
			if err != nil {
				return sum, fmt.Errorf("team %s player %s: %w", t.Name, username, err)
			}
			if _, err := svc.Teams.AddPlayer(ctx, team.ID, u.ID); err != nil && !errors.Is(err, apperrors.ErrPlayerAlreadyInTeam) {
				return sum, fmt.Errorf("team %s player %s: %w", t.Name, username, err)
			}
		}
	}

	for _, t := range f.Tournaments {
		existing, err := findTournament(ctx, svc.Tournaments, t.Name)
		if err != nil {
			return sum, err
		}
		if existing != nil {
			sum.Skipped++
			continue
		}
		tr, err := createTournament(ctx, svc.Tournaments, t)
		if err != nil {
			return sum, fmt.Errorf("tournament %s: %w", t.Name, err)
		}
		sum.Tournaments++
		for _, name := range t.Teams {
			team, err := svc.Teams.GetTeamByName(ctx, name)
			if err != nil {
				return sum, fmt.Errorf("tournament %s team %s: %w", t.Name, name, err)
			}
			if err := svc.Tournaments.RegisterTeam(ctx, tr.ID, team.ID); err != nil {
				return sum, fmt.Errorf("tournament %s team %s: %w", t.Name, name, err)
			}
		}
		// Registration needs an open tournament; the final status is set last.
		if st := model.TournamentStatus(t.Status); t.Status != "" && st != model.TournamentOpen {
			if _, err := svc.Tournaments.UpdateTournament(ctx, tr.ID, service.UpdateTournamentInput{Status: &st}); err != nil {
				return sum, fmt.Errorf("tournament %s status: %w", t.Name, err)
			}
		}
	}

	log.Info().
		Int("users", sum.Users).
		Int("teams", sum.Teams).
		Int("tournaments", sum.Tournaments).
		Int("skipped", sum.Skipped).
		Msg("fixture applied")
	return sum, nil
}

func findTournament(ctx context.Context, s *service.TournamentService, name string) (*model.Tournament, error) {
	list, err := s.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, nil
}

func createTournament(ctx context.Context, s *service.TournamentService, t Tournament) (model.Tournament, error) {
	start, err := time.Parse("2006-01-02", t.StartDate)
	if err != nil {
		return model.Tournament{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", t.EndDate)
	if err != nil {
		return model.Tournament{}, fmt.Errorf("end_date: %w", err)
	}
	in := service.CreateTournamentInput{
		Name:        t.Name,
		Description: t.Description,
		StartDate:   start,
		EndDate:     end,
	}
	if t.MaxTeams > 0 {
		in.MaxTeams = &t.MaxTeams
	}
	return s.CreateTournament(ctx, in)
}
