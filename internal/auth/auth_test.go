package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	apperrors "tournament-backend/internal/errors"
	"tournament-backend/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokensRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	tokens := NewTokens(testSecret, time.Hour, "tournament-backend", clock)

	tok, err := tokens.Issue(model.User{ID: 7, Username: "john", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	username, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if username != "john" {
		t.Fatalf("username = %q, want john", username)
	}

	clock.Advance(2 * time.Hour)
	if _, err := tokens.Parse(tok); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestTokensRejectForeignSecretAndIssuer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tok, err := NewTokens(testSecret, time.Hour, "tournament-backend", clock).Issue(model.User{ID: 1, Username: "john"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokens("another-secret-another-secret", time.Hour, "tournament-backend", clock).Parse(tok); err == nil {
		t.Fatal("expected signature failure")
	}
	if _, err := NewTokens(testSecret, time.Hour, "someone-else", clock).Parse(tok); err == nil {
		t.Fatal("expected issuer failure")
	}
	if _, err := NewTokens(testSecret, time.Hour, "tournament-backend", clock).Parse("not-a-token"); err == nil {
		t.Fatal("expected malformed token failure")
	}
}

func TestBcryptEncoder(t *testing.T) {
	enc := BcryptEncoder{Cost: bcrypt.MinCost}
	hash, err := enc.Encode("secret123")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must differ from the plain password")
	}
	if !enc.Matches(hash, "secret123") || enc.Matches(hash, "wrong") {
		t.Fatal("password verification mismatch")
	}
}

func TestRequire(t *testing.T) {
	user := WithPrincipal(context.Background(), Principal{ID: 2, Username: "john", Role: model.RoleUser})
	admin := WithPrincipal(context.Background(), Principal{ID: 1, Username: "root", Role: model.RoleAdmin})

	tests := []struct {
		name string
		ctx  context.Context
		rule Rule
		want *apperrors.Error
	}{
		{"anonymous", context.Background(), Authenticated, apperrors.New(apperrors.CodeAuthenticationFailed, "")},
		{"user any role", user, AnyRole, nil},
		{"user admin only", user, AdminOnly, apperrors.ErrAccessDenied},
		{"admin admin only", admin, AdminOnly, nil},
		{"self", user, SelfOrAdmin(2), nil},
		{"other", user, SelfOrAdmin(3), apperrors.ErrAccessDenied},
		{"admin other", admin, SelfOrAdmin(3), nil},
		{"self by name", user, SelfOrAdminByName("john"), nil},
		{"other by name", user, SelfOrAdminByName("jane"), apperrors.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Require(tt.ctx, tt.rule)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want code %s", err, tt.want.Code)
			}
		})
	}
}

func TestActorID(t *testing.T) {
	if ActorID(context.Background()) != nil {
		t.Fatal("anonymous actor must be nil")
	}
	if ActorID(System(context.Background())) != nil {
		t.Fatal("system actor must be nil")
	}
	id := ActorID(WithPrincipal(context.Background(), Principal{ID: 5}))
	if id == nil || *id != 5 {
		t.Fatalf("actor = %v", id)
	}
}
