package team_service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/team_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
	"github.com/adzap-tech/adzap-backend/middleware"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)

	logrus.Info("initializing service")
	service.InitializeServices()

	os.Exit(m.Run())
}

func newService(t *testing.T) *team_service.TeamService {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("cannot create file store: %v", err)
	}
	return &team_service.TeamService{Store: store, MaxTeams: 50}
}

func ctxWithRole(role string) context.Context {
	return context.WithValue(
		context.Background(),
		middleware.KeyCtxSessionClaims,
		middleware.SessionClaims{Name: "tester", Email: "tester@x.com", Role: role},
	)
}

func ctxAsParticipant(teamID int64) context.Context {
	return context.WithValue(
		context.Background(),
		middleware.KeyCtxSessionClaims,
		middleware.SessionClaims{Email: "team@x.com", Role: middleware.RoleParticipant, TeamID: &teamID},
	)
}

func registerTeam(t *testing.T, ts *team_service.TeamService, name string) storage.Team {
	t.Helper()
	team, err := ts.RegisterTeam(context.Background(), team_service.TeamRegistration{
		TeamName: name,
		Email:    fmt.Sprintf("%s@x.com", name),
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("cannot register team %s: %v", name, err)
	}
	return team
}

func TestRecordScoreClampsAndAverages(t *testing.T) {
	ts := newService(t)
	judgeCtx := ctxWithRole(middleware.RoleJudge)
	team := registerTeam(t, ts, "alpha")

	updated, err := ts.RecordScore(judgeCtx, team.ID, "judge1", 1, 15)
	if err != nil {
		t.Fatalf("record score failed: %v", err)
	}
	if got := updated.Scores["judge1"]["round1"]; got != 10 {
		t.Errorf("expected score clamped to 10, got %v", got)
	}
	if updated.Round1.AvgScore != 10 {
		t.Errorf("expected average 10 with one judge, got %v", updated.Round1.AvgScore)
	}

	updated, err = ts.RecordScore(judgeCtx, team.ID, "judge2", 1, 4)
	if err != nil {
		t.Fatalf("record second score failed: %v", err)
	}
	if updated.Round1.AvgScore != 7 {
		t.Errorf("expected average 7, got %v", updated.Round1.AvgScore)
	}

	// re-scoring replaces, never accumulates
	updated, err = ts.RecordScore(judgeCtx, team.ID, "judge1", 1, 6)
	if err != nil {
		t.Fatalf("re-record failed: %v", err)
	}
	if updated.Round1.AvgScore != 5 {
		t.Errorf("expected average 5 after rescore, got %v", updated.Round1.AvgScore)
	}

	if _, err := ts.RecordScore(judgeCtx, team.ID, "judge3", 1, 5); !errors.Is(err, adzap_errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for unknown judge, got %v", err)
	}
	if _, err := ts.RecordScore(judgeCtx, team.ID, "judge1", 3, 5); !errors.Is(err, adzap_errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for round 3, got %v", err)
	}
}

func TestAverageScoreNilWhenUnscored(t *testing.T) {
	team := storage.Team{Scores: map[string]storage.JudgeRounds{
		"judge1": {"round1": 8},
	}}

	if avg := team_service.AverageScore(team, 1); avg == nil || *avg != 8 {
		t.Errorf("expected average 8 from the single scoring judge, got %v", avg)
	}
	if avg := team_service.AverageScore(team, 2); avg != nil {
		t.Errorf("expected nil average for unscored round, got %v", *avg)
	}
	if avg := team_service.AverageScore(storage.Team{}, 1); avg != nil {
		t.Errorf("expected nil average for empty team, got %v", *avg)
	}
}

func TestFinalizeRound1ResetsRound2(t *testing.T) {
	ts := newService(t)
	adminCtx := ctxWithRole(middleware.RoleAdmin)
	a := registerTeam(t, ts, "teama")
	b := registerTeam(t, ts, "teamb")

	if _, err := ts.FinalizeRound1(adminCtx, []int64{a.ID}); err != nil {
		t.Fatalf("finalize round 1 failed: %v", err)
	}
	teams, err := ts.FinalizeRound2(adminCtx, []int64{a.ID})
	if err != nil {
		t.Fatalf("finalize round 2 failed: %v", err)
	}
	if !teamByID(t, teams, a.ID).Round2.Selected {
		t.Errorf("team a should be round-2 selected")
	}

	// re-finalizing round 1 always invalidates round 2
	teams, err = ts.FinalizeRound1(adminCtx, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("re-finalize round 1 failed: %v", err)
	}
	for _, team := range teams {
		if !team.Round1.Selected {
			t.Errorf("team %d should be round-1 selected", team.ID)
		}
		if team.Round2.Selected {
			t.Errorf("team %d round-2 flag should have been reset", team.ID)
		}
	}
}

func TestFinalizeRound2RequiresRound1Selection(t *testing.T) {
	ts := newService(t)
	adminCtx := ctxWithRole(middleware.RoleAdmin)
	a := registerTeam(t, ts, "qualified")
	b := registerTeam(t, ts, "eliminated")

	if _, err := ts.FinalizeRound1(adminCtx, []int64{a.ID}); err != nil {
		t.Fatalf("finalize round 1 failed: %v", err)
	}
	teams, err := ts.FinalizeRound2(adminCtx, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("finalize round 2 failed: %v", err)
	}
	if !teamByID(t, teams, a.ID).Round2.Selected {
		t.Errorf("round-1 selected team should qualify for round 2")
	}
	if teamByID(t, teams, b.ID).Round2.Selected {
		t.Errorf("team outside round-1 selection must never qualify for round 2")
	}
}

func TestClearRoundSelectionKeepsScores(t *testing.T) {
	ts := newService(t)
	adminCtx := ctxWithRole(middleware.RoleAdmin)
	a := registerTeam(t, ts, "cleared")

	if _, err := ts.RecordScore(adminCtx, a.ID, "judge1", 1, 9); err != nil {
		t.Fatalf("record score failed: %v", err)
	}
	if _, err := ts.FinalizeRound1(adminCtx, []int64{a.ID}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	teams, err := ts.ClearRoundSelection(adminCtx, 1)
	if err != nil {
		t.Fatalf("clear selection failed: %v", err)
	}
	team := teamByID(t, teams, a.ID)
	if team.Round1.Selected {
		t.Errorf("round-1 flag should be cleared")
	}
	if team.Scores["judge1"]["round1"] != 9 {
		t.Errorf("clearing a selection must not touch scores, got %v", team.Scores)
	}
}

func TestClearJudgeScoresIsolation(t *testing.T) {
	ts := newService(t)
	judgeCtx := ctxWithRole(middleware.RoleJudge)
	a := registerTeam(t, ts, "first")
	b := registerTeam(t, ts, "second")

	for _, id := range []int64{a.ID, b.ID} {
		for round := 1; round <= 2; round++ {
			if _, err := ts.RecordScore(judgeCtx, id, "judge1", round, 6); err != nil {
				t.Fatalf("record failed: %v", err)
			}
		}
		if _, err := ts.RecordScore(judgeCtx, id, "judge2", 1, 8); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	teams, err := ts.ClearJudgeScores(judgeCtx, "judge1", 1, []int64{a.ID})
	if err != nil {
		t.Fatalf("clear judge scores failed: %v", err)
	}

	teamA := teamByID(t, teams, a.ID)
	if _, ok := teamA.Scores["judge1"]["round1"]; ok {
		t.Errorf("judge1 round1 should be cleared for team a")
	}
	if teamA.Scores["judge1"]["round2"] != 6 {
		t.Errorf("judge1 round2 must survive, got %v", teamA.Scores["judge1"])
	}
	if teamA.Round1.AvgScore != 8 {
		t.Errorf("average should be refreshed to 8, got %v", teamA.Round1.AvgScore)
	}

	teamB := teamByID(t, teams, b.ID)
	if teamB.Scores["judge1"]["round1"] != 6 {
		t.Errorf("team b must be untouched, got %v", teamB.Scores["judge1"])
	}

	// clearing a judge's only remaining round drops the judge entry
	teams, err = ts.ClearJudgeScores(judgeCtx, "judge2", 1, nil)
	if err != nil {
		t.Fatalf("clear all failed: %v", err)
	}
	for _, team := range teams {
		if _, ok := team.Scores["judge2"]; ok {
			t.Errorf("team %d should have no judge2 entry, got %v", team.ID, team.Scores)
		}
	}
}

func TestRankings(t *testing.T) {
	ts := newService(t)
	adminCtx := ctxWithRole(middleware.RoleAdmin)
	high := registerTeam(t, ts, "high")
	low := registerTeam(t, ts, "low")
	registerTeam(t, ts, "unscored")

	if _, err := ts.RecordScore(adminCtx, high.ID, "judge1", 1, 9); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := ts.RecordScore(adminCtx, low.ID, "judge1", 1, 3); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	entries, err := ts.Rankings(context.Background(), 1)
	if err != nil {
		t.Fatalf("rankings failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("unscored team must be excluded, got %d entries", len(entries))
	}
	if entries[0].TeamID != high.ID || entries[1].TeamID != low.ID {
		t.Errorf("expected descending order [high low], got %v", entries)
	}

	// round 2 only considers round-1 qualified teams
	if _, err := ts.RecordScore(adminCtx, high.ID, "judge1", 2, 7); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := ts.RecordScore(adminCtx, low.ID, "judge1", 2, 8); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := ts.FinalizeRound1(adminCtx, []int64{high.ID}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	entries, err = ts.Rankings(context.Background(), 2)
	if err != nil {
		t.Fatalf("round 2 rankings failed: %v", err)
	}
	if len(entries) != 1 || entries[0].TeamID != high.ID {
		t.Errorf("round 2 table must only contain round-1 qualified teams, got %v", entries)
	}

	if _, err := ts.Rankings(context.Background(), 3); !errors.Is(err, adzap_errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for round 3, got %v", err)
	}
}

func TestScoringAuthorization(t *testing.T) {
	ts := newService(t)
	team := registerTeam(t, ts, "guarded")

	participantCtx := ctxAsParticipant(team.ID)
	if _, err := ts.RecordScore(participantCtx, team.ID, "judge1", 1, 5); !errors.Is(err, adzap_errors.ErrUnAuthorized) {
		t.Errorf("participants must not score, got %v", err)
	}

	judgeCtx := ctxWithRole(middleware.RoleJudge)
	if _, err := ts.FinalizeRound1(judgeCtx, []int64{team.ID}); !errors.Is(err, adzap_errors.ErrUnAuthorized) {
		t.Errorf("judges must not finalize rounds, got %v", err)
	}
	if _, err := ts.DeleteTeams(judgeCtx, []int64{team.ID}); !errors.Is(err, adzap_errors.ErrUnAuthorized) {
		t.Errorf("judges must not delete teams, got %v", err)
	}
}

func TestUpdateProductNameAuthorization(t *testing.T) {
	ts := newService(t)
	own := registerTeam(t, ts, "owner")
	other := registerTeam(t, ts, "other")

	ownCtx := ctxAsParticipant(own.ID)
	updated, err := ts.UpdateProductName(ownCtx, own.ID, "SuperSoap")
	if err != nil {
		t.Fatalf("participant should edit own team: %v", err)
	}
	if updated.ProductName != "SuperSoap" {
		t.Errorf("product name not updated, got %q", updated.ProductName)
	}

	if _, err := ts.UpdateProductName(ownCtx, other.ID, "Hijack"); !errors.Is(err, adzap_errors.ErrUnAuthorized) {
		t.Errorf("participant must not edit another team, got %v", err)
	}

	adminCtx := ctxWithRole(middleware.RoleAdmin)
	if _, err := ts.UploadPoster(adminCtx, other.ID, "data:image/png;base64,xyz"); err != nil {
		t.Errorf("admin should edit any team: %v", err)
	}
}

func teamByID(t *testing.T, teams []storage.Team, id int64) storage.Team {
	t.Helper()
	for _, team := range teams {
		if team.ID == id {
			return team
		}
	}
	t.Fatalf("team %d not found in result", id)
	return storage.Team{}
}
