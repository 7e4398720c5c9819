package seed

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"tournament-backend/internal/auth"
	"tournament-backend/internal/model"
	"tournament-backend/internal/service"
	"tournament-backend/internal/store"
)

func newServices(t *testing.T) Services {
	t.Helper()
	st, err := store.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	d := service.Deps{Store: st}
	return Services{
		Users:       service.NewUserService(d, auth.BcryptEncoder{Cost: bcrypt.MinCost}),
		Teams:       service.NewTeamService(d),
		Tournaments: service.NewTournamentService(d),
	}
}

func TestLoadFixture(t *testing.T) {
	f, err := Load("testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Users) != 3 || len(f.Teams) != 2 || len(f.Tournaments) != 2 {
		t.Fatalf("fixture = %+v", f)
	}
	if f.Tournaments[0].MaxTeams != 8 || f.Tournaments[1].Status != "COMPLETED" {
		t.Fatalf("tournaments = %+v", f.Tournaments)
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	if _, err := Parse([]byte("users: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyIsRepeatable(t *testing.T) {
	svc := newServices(t)
	f, err := Load("testdata/fixtures.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()

	sum, err := Apply(ctx, svc, f)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if sum.Users != 3 || sum.Teams != 2 || sum.Tournaments != 2 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	sys := auth.System(ctx)
	admin, err := svc.Users.GetUserByUsername(sys, "admin")
	if err != nil || admin.Role != model.RoleAdmin {
		t.Fatalf("admin = %+v, %v", admin, err)
	}
	lions, err := svc.Teams.GetTeamByName(sys, "Red Lions")
	if err != nil || lions.NumberOfPlayers() != 1 {
		t.Fatalf("team = %+v, %v", lions, err)
	}
	cups, err := svc.Tournaments.ListByTeam(sys, lions.ID)
	if err != nil || len(cups) != 2 {
		t.Fatalf("tournaments by team = %v, %v", cups, err)
	}
	done, err := svc.Tournaments.ListByStatus(sys, model.TournamentCompleted)
	if err != nil || len(done) != 1 || done[0].Name != "Winter Cup" {
		t.Fatalf("completed = %v, %v", done, err)
	}

	sum, err = Apply(ctx, svc, f)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if sum.Users != 0 || sum.Teams != 0 || sum.Tournaments != 0 || sum.Skipped != 7 {
		t.Fatalf("second summary = %+v", sum)
	}
}
