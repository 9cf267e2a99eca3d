package team_service

import (
	"context"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
	"github.com/adzap-tech/adzap-backend/middleware"
)

// ClampScore forces a raw score into the [0,10] scale.
func ClampScore(raw float64) float64 {
	return min(MaxScore, max(MinScore, raw))
}

// AverageScore returns the mean of the scores the judges recorded for a
// round, ignoring judges who have not scored. Nil when nobody has.
func AverageScore(team storage.Team, round int) *float64 {
	key := storage.RoundKey(round)
	var sum float64
	var n int
	for _, judgeID := range validJudges {
		if rounds, ok := team.Scores[judgeID]; ok {
			if score, ok := rounds[key]; ok {
				sum += score
				n++
			}
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func validateScoreTarget(judgeID string, round int) error {
	if !slices.Contains(validJudges, judgeID) {
		return fmt.Errorf("%w, unknown judge %q", adzap_errors.ErrInvalidInput, judgeID)
	}
	if round != 1 && round != 2 {
		return fmt.Errorf("%w, round must be 1 or 2", adzap_errors.ErrInvalidInput)
	}
	return nil
}

// refreshAverages recomputes the persisted per-round averages from the
// score map. Teams with no recorded scores keep 0.
func refreshAverages(team *storage.Team) {
	team.Round1.AvgScore = 0
	team.Round2.AvgScore = 0
	if avg := AverageScore(*team, 1); avg != nil {
		team.Round1.AvgScore = *avg
	}
	if avg := AverageScore(*team, 2); avg != nil {
		team.Round2.AvgScore = *avg
	}
}

// RecordScore stores one judge's score for one round of one team,
// replacing any previous value for that triple only.
func (t *TeamService) RecordScore(
	ctx context.Context,
	teamID int64,
	judgeID string,
	round int,
	rawScore float64,
) (storage.Team, error) {
	if _, err := service.RequireRole(ctx, middleware.RoleJudge, middleware.RoleAdmin); err != nil {
		return storage.Team{}, err
	}
	if err := validateScoreTarget(judgeID, round); err != nil {
		return storage.Team{}, err
	}
	score := ClampScore(rawScore)
	team, err := t.Store.UpdateTeam(ctx, teamID, func(team *storage.Team) error {
		if team.Scores == nil {
			team.Scores = map[string]storage.JudgeRounds{}
		}
		rounds, ok := team.Scores[judgeID]
		if !ok {
			rounds = storage.JudgeRounds{}
			team.Scores[judgeID] = rounds
		}
		rounds[storage.RoundKey(round)] = score
		refreshAverages(team)
		return nil
	})
	if err != nil {
		return storage.Team{}, err
	}
	log.WithFields(log.Fields{
		"team_id": teamID,
		"judge":   judgeID,
		"round":   round,
		"score":   score,
	}).Info("recorded score")
	return team.Sanitized(), nil
}

// FinalizeRound1 marks exactly the given teams as round-1 selected and
// unconditionally resets every round-2 flag. Re-finalizing round 1
// always invalidates round 2.
func (t *TeamService) FinalizeRound1(ctx context.Context, teamIDs []int64) ([]storage.Team, error) {
	if _, err := service.RequireRole(ctx, middleware.RoleAdmin); err != nil {
		return nil, err
	}
	selected := idSet(teamIDs)
	teams, err := t.Store.MutateTeams(ctx, func(teams []storage.Team) []storage.Team {
		for i := range teams {
			teams[i].Round1.Selected = selected[teams[i].ID]
			teams[i].Round2.Selected = false
			refreshAverages(&teams[i])
		}
		return teams
	})
	if err != nil {
		return nil, err
	}
	log.WithField("selected", len(teamIDs)).Info("finalized round 1")
	return sanitizeAll(teams), nil
}

// FinalizeRound2 marks the given teams as round-2 selected; teams that
// are not round-1 selected can never qualify regardless of the input.
func (t *TeamService) FinalizeRound2(ctx context.Context, teamIDs []int64) ([]storage.Team, error) {
	if _, err := service.RequireRole(ctx, middleware.RoleAdmin); err != nil {
		return nil, err
	}
	selected := idSet(teamIDs)
	teams, err := t.Store.MutateTeams(ctx, func(teams []storage.Team) []storage.Team {
		for i := range teams {
			teams[i].Round2.Selected = selected[teams[i].ID] && teams[i].Round1.Selected
			refreshAverages(&teams[i])
		}
		return teams
	})
	if err != nil {
		return nil, err
	}
	log.WithField("selected", len(teamIDs)).Info("finalized round 2")
	return sanitizeAll(teams), nil
}

// ClearRoundSelection drops every team's selection flag for the round.
// Scores are untouched.
func (t *TeamService) ClearRoundSelection(ctx context.Context, round int) ([]storage.Team, error) {
	if _, err := service.RequireRole(ctx, middleware.RoleAdmin); err != nil {
		return nil, err
	}
	if round != 1 && round != 2 {
		return nil, fmt.Errorf("%w, round must be 1 or 2", adzap_errors.ErrInvalidInput)
	}
	teams, err := t.Store.MutateTeams(ctx, func(teams []storage.Team) []storage.Team {
		for i := range teams {
			if round == 1 {
				teams[i].Round1.Selected = false
			} else {
				teams[i].Round2.Selected = false
			}
		}
		return teams
	})
	if err != nil {
		return nil, err
	}
	log.WithField("round", round).Info("cleared round selection")
	return sanitizeAll(teams), nil
}

// ClearJudgeScores removes one judge's entries for a round, for every
// team or only the given ids. A judge with no remaining rounds is
// dropped from the team's score map entirely.
func (t *TeamService) ClearJudgeScores(
	ctx context.Context,
	judgeID string,
	round int,
	teamIDs []int64,
) ([]storage.Team, error) {
	if _, err := service.RequireRole(ctx, middleware.RoleJudge, middleware.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateScoreTarget(judgeID, round); err != nil {
		return nil, err
	}
	var only map[int64]bool
	if teamIDs != nil {
		only = idSet(teamIDs)
	}
	key := storage.RoundKey(round)
	teams, err := t.Store.MutateTeams(ctx, func(teams []storage.Team) []storage.Team {
		for i := range teams {
			if only != nil && !only[teams[i].ID] {
				continue
			}
			rounds, ok := teams[i].Scores[judgeID]
			if !ok {
				continue
			}
			delete(rounds, key)
			if len(rounds) == 0 {
				delete(teams[i].Scores, judgeID)
			}
			refreshAverages(&teams[i])
		}
		return teams
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"judge": judgeID,
		"round": round,
	}).Info("cleared judge scores")
	return sanitizeAll(teams), nil
}

// DeleteTeams removes the teams entirely, scores and posters included.
func (t *TeamService) DeleteTeams(ctx context.Context, teamIDs []int64) (int, error) {
	if _, err := service.RequireRole(ctx, middleware.RoleAdmin); err != nil {
		return 0, err
	}
	deleted, err := t.Store.DeleteTeams(ctx, teamIDs)
	if err != nil {
		return 0, err
	}
	log.WithField("deleted", deleted).Info("deleted teams")
	return deleted, nil
}

// UpdateProductName replaces the team's product name. Participants may
// only touch their own team.
func (t *TeamService) UpdateProductName(ctx context.Context, teamID int64, productName string) (storage.Team, error) {
	if err := t.authorizeTeamEdit(ctx, teamID); err != nil {
		return storage.Team{}, err
	}
	team, err := t.Store.UpdateTeam(ctx, teamID, func(team *storage.Team) error {
		team.ProductName = productName
		return nil
	})
	if err != nil {
		return storage.Team{}, err
	}
	return team.Sanitized(), nil
}

// UploadPoster attaches the opaque poster payload to the team.
func (t *TeamService) UploadPoster(ctx context.Context, teamID int64, poster any) (storage.Team, error) {
	if err := t.authorizeTeamEdit(ctx, teamID); err != nil {
		return storage.Team{}, err
	}
	team, err := t.Store.UpdateTeam(ctx, teamID, func(team *storage.Team) error {
		team.Poster = poster
		return nil
	})
	if err != nil {
		return storage.Team{}, err
	}
	log.WithField("team_id", teamID).Info("uploaded poster")
	return team.Sanitized(), nil
}

func (t *TeamService) authorizeTeamEdit(ctx context.Context, teamID int64) error {
	claims, err := service.RequireRole(ctx, middleware.RoleParticipant, middleware.RoleAdmin)
	if err != nil {
		return err
	}
	if claims.Role == middleware.RoleAdmin {
		return nil
	}
	if claims.TeamID == nil || *claims.TeamID != teamID {
		log.WithFields(log.Fields{
			"email":   claims.Email,
			"team_id": teamID,
		}).Warn("participant tried to edit another team")
		return adzap_errors.ErrUnAuthorized
	}
	return nil
}

// Rankings is the leaderboard for a round: stable descending sort by
// average, teams without any recorded score excluded. Round 2 only
// considers round-1 qualified teams.
func (t *TeamService) Rankings(ctx context.Context, round int) ([]RankingEntry, error) {
	if round != 1 && round != 2 {
		return nil, fmt.Errorf("%w, round must be 1 or 2", adzap_errors.ErrInvalidInput)
	}
	teams, err := t.Store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	entries := []RankingEntry{}
	for _, team := range teams {
		if round == 2 && !team.Round1.Selected {
			continue
		}
		avg := AverageScore(team, round)
		if avg == nil {
			continue
		}
		entries = append(entries, RankingEntry{
			TeamID:      team.ID,
			TeamName:    team.TeamName,
			TeamNumber:  team.TeamNumber,
			ProductName: team.ProductName,
			Average:     *avg,
		})
	}
	slices.SortStableFunc(entries, func(a, b RankingEntry) int {
		switch {
		case a.Average > b.Average:
			return -1
		case a.Average < b.Average:
			return 1
		}
		return 0
	})
	return entries, nil
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sanitizeAll(teams []storage.Team) []storage.Team {
	out := make([]storage.Team, len(teams))
	for i, team := range teams {
		out[i] = team.Sanitized()
	}
	return out
}
