package team_service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/service/team_service"
)

func TestRegisterTeamValidation(t *testing.T) {
	ts := newService(t)

	cases := []struct {
		name         string
		registration team_service.TeamRegistration
	}{
		{
			name:         "missing_team_name",
			registration: team_service.TeamRegistration{Email: "a@x.com", Password: "secret123"},
		},
		{
			name:         "missing_email",
			registration: team_service.TeamRegistration{TeamName: "alpha", Password: "secret123"},
		},
		{
			name:         "malformed_email",
			registration: team_service.TeamRegistration{TeamName: "alpha", Email: "not-an-email", Password: "secret123"},
		},
		{
			name:         "missing_password",
			registration: team_service.TeamRegistration{TeamName: "alpha", Email: "a@x.com"},
		},
	}

	for _, c := range cases {
		_, err := ts.RegisterTeam(context.Background(), c.registration)
		if !errors.Is(err, adzap_errors.ErrInvalidInput) {
			t.Errorf("%s: expected invalid input, got %v", c.name, err)
		}
	}
}

func TestRegisterTeamDuplicateEmailCaseInsensitive(t *testing.T) {
	ts := newService(t)
	ctx := context.Background()

	_, err := ts.RegisterTeam(ctx, team_service.TeamRegistration{
		TeamName: "alpha",
		Email:    "Team@X.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err = ts.RegisterTeam(ctx, team_service.TeamRegistration{
		TeamName: "beta",
		Email:    "  team@x.COM ",
		Password: "different",
	})
	if !errors.Is(err, adzap_errors.ErrDuplicateEmail) {
		t.Errorf("expected duplicate email error, got %v", err)
	}
}

func TestRegisterTeamCapacity(t *testing.T) {
	ts := newService(t)
	ts.MaxTeams = 2
	ctx := context.Background()

	for _, name := range []string{"one", "two"} {
		_, err := ts.RegisterTeam(ctx, team_service.TeamRegistration{
			TeamName: name,
			Email:    name + "@x.com",
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("registration %s failed: %v", name, err)
		}
	}

	_, err := ts.RegisterTeam(ctx, team_service.TeamRegistration{
		TeamName: "three",
		Email:    "three@x.com",
		Password: "secret123",
	})
	if !errors.Is(err, adzap_errors.ErrCapacityFull) {
		t.Errorf("expected capacity error, got %v", err)
	}
}

func TestRegisterTeamSanitizesResult(t *testing.T) {
	ts := newService(t)

	team, err := ts.RegisterTeam(context.Background(), team_service.TeamRegistration{
		TeamName: "clean",
		Email:    "clean@x.com",
		Password: "secret123",
		Members:  []team_service.MemberInput{{Name: " Ada ", Phone: "123"}},
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if team.PasswordHash != "" || team.EmailKey != "" {
		t.Errorf("registration response leaks credentials: %+v", team)
	}
	if team.ID == 0 || team.CreatedAt == "" {
		t.Errorf("expected generated id and timestamp, got %+v", team)
	}
	if len(team.Members) != 1 || team.Members[0].Name != "Ada" {
		t.Errorf("expected trimmed member roster, got %v", team.Members)
	}
}

func TestReplaceAllTeamsKeepsStoredHash(t *testing.T) {
	ts := newService(t)
	ctx := context.Background()

	registered, err := ts.RegisterTeam(ctx, team_service.TeamRegistration{
		TeamName: "keeper",
		Email:    "keeper@x.com",
		Password: "original-pw",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	// the bulk payload never carries credentials
	_, err = ts.ReplaceAllTeams(ctx, []team_service.IncomingTeam{{
		ID:          registered.ID,
		TeamName:    "keeper renamed",
		Email:       "keeper@x.com",
		ProductName: "Gadget",
	}})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	stored, err := ts.Store.FindTeamByEmailKey(ctx, "keeper@x.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.TeamName != "keeper renamed" || stored.ProductName != "Gadget" {
		t.Errorf("replace did not apply fields, got %+v", stored)
	}
	if !auth_service.VerifyPassword(stored.PasswordHash, "original-pw") {
		t.Errorf("stored hash should survive a credential-less replace")
	}

	// a plaintext password in the payload resets the credential
	_, err = ts.ReplaceAllTeams(ctx, []team_service.IncomingTeam{{
		ID:       registered.ID,
		TeamName: "keeper",
		Email:    "keeper@x.com",
		Password: "new-pw",
	}})
	if err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	stored, err = ts.Store.FindTeamByEmailKey(ctx, "keeper@x.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !auth_service.VerifyPassword(stored.PasswordHash, "new-pw") {
		t.Errorf("replace with password should reset the hash")
	}
}

func TestReplaceAllTeamsNormalizesNewEntries(t *testing.T) {
	ts := newService(t)

	teams, err := ts.ReplaceAllTeams(context.Background(), []team_service.IncomingTeam{{
		TeamName: "  fresh  ",
		Email:    " Fresh@X.com ",
	}})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(teams))
	}
	team := teams[0]
	if team.ID == 0 {
		t.Errorf("new entry should get a generated id")
	}
	if team.TeamName != "fresh" {
		t.Errorf("expected trimmed team name, got %q", team.TeamName)
	}
	if team.CreatedAt == "" {
		t.Errorf("expected a default createdAt")
	}
	if team.Scores == nil {
		t.Errorf("expected an empty score map")
	}

	stored, err := ts.Store.FindTeamByEmailKey(context.Background(), "fresh@x.com")
	if err != nil {
		t.Errorf("normalized email key not stored: %v", err)
	} else if stored.ID != team.ID {
		t.Errorf("expected stored team %d, got %d", team.ID, stored.ID)
	}
}
