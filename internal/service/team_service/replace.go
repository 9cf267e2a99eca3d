package team_service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

// ReplaceAllTeams swaps the entire team collection for the given list,
// the client's single coarse-grained write path. Last write wins, there
// is no conflict detection. Credentials are merged: an incoming team
// keeps the stored hash for its id unless it carries a new plaintext
// password.
func (t *TeamService) ReplaceAllTeams(
	ctx context.Context,
	incoming []IncomingTeam,
) ([]storage.Team, error) {
	current, err := t.Store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	hashes := make(map[int64]string, len(current))
	for _, team := range current {
		hashes[team.ID] = team.PasswordHash
	}

	normalized := make([]storage.Team, len(incoming))
	for i, in := range incoming {
		id := in.ID
		if id == 0 {
			id = storage.NextID()
		}
		team := storage.Team{
			ID:          id,
			TeamName:    strings.TrimSpace(in.TeamName),
			TeamNumber:  strings.TrimSpace(in.TeamNumber),
			Email:       strings.TrimSpace(in.Email),
			EmailKey:    service.NormalizeEmail(in.Email),
			Members:     mapMembers(in.Members),
			ProductName: strings.TrimSpace(in.ProductName),
			Poster:      in.Poster,
			Scores:      map[string]storage.JudgeRounds{},
			CreatedAt:   in.CreatedAt,
		}
		if in.Round1 != nil {
			team.Round1 = *in.Round1
		}
		if in.Round2 != nil {
			team.Round2 = *in.Round2
		}
		if in.Scores != nil {
			team.Scores = in.Scores
		}
		if team.CreatedAt == "" {
			team.CreatedAt = storage.NowISO()
		}
		if password := strings.TrimSpace(in.Password); password != "" {
			hash, err := auth_service.GeneratePasswordHash(password)
			if err != nil {
				return nil, err
			}
			team.PasswordHash = hash
		} else {
			team.PasswordHash = hashes[id]
		}
		normalized[i] = team
	}

	if err := t.Store.ReplaceTeams(ctx, normalized); err != nil {
		return nil, err
	}
	log.WithField("teams", len(normalized)).Info("replaced team collection")
	return sanitizeAll(normalized), nil
}
