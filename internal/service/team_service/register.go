package team_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/email"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

// RegisterTeam creates a team, enforcing the participant capacity and
// the case-insensitive email uniqueness rule. Returns the sanitized
// record.
func (t *TeamService) RegisterTeam(
	ctx context.Context,
	registration TeamRegistration,
) (storage.Team, error) {
	registration.TeamName = strings.TrimSpace(registration.TeamName)
	registration.TeamNumber = strings.TrimSpace(registration.TeamNumber)
	registration.Email = strings.TrimSpace(registration.Email)
	registration.Password = strings.TrimSpace(registration.Password)
	registration.ProductName = strings.TrimSpace(registration.ProductName)

	if err := service.ValidateInput(registration); err != nil {
		return storage.Team{}, err
	}

	passwordHash, err := auth_service.GeneratePasswordHash(registration.Password)
	if err != nil {
		return storage.Team{}, err
	}

	team := storage.Team{
		ID:           storage.NextID(),
		TeamName:     registration.TeamName,
		TeamNumber:   registration.TeamNumber,
		Email:        registration.Email,
		EmailKey:     service.NormalizeEmail(registration.Email),
		PasswordHash: passwordHash,
		Members:      mapMembers(registration.Members),
		ProductName:  registration.ProductName,
		Poster:       registration.Poster,
		Round1:       storage.RoundStanding{},
		Round2:       storage.RoundStanding{},
		Scores:       map[string]storage.JudgeRounds{},
		CreatedAt:    storage.NowISO(),
	}

	if err := t.Store.InsertTeam(ctx, team, t.maxTeams()); err != nil {
		if errors.Is(err, adzap_errors.ErrCapacityFull) {
			return storage.Team{}, fmt.Errorf(
				"%w, registrations are closed. maximum %d participants reached",
				adzap_errors.ErrCapacityFull, t.maxTeams(),
			)
		}
		if errors.Is(err, adzap_errors.ErrDuplicateEmail) {
			return storage.Team{}, fmt.Errorf(
				"%w, this email is already registered. please use participant login",
				adzap_errors.ErrDuplicateEmail,
			)
		}
		return storage.Team{}, err
	}

	log.WithFields(log.Fields{
		"team_id":   team.ID,
		"team_name": team.TeamName,
	}).Info("registered team")

	// best effort, registration never fails on mail trouble
	if err := email.NewMail(
		ctx,
		"ADZAP registration received",
		fmt.Sprintf("Team %q is registered for ADZAP. Your team id is %d.", team.TeamName, team.ID),
		email.KeyEmailBodyPlain,
		email.PurposeRegistrationReceipt,
		team.Email,
	); err != nil && !errors.Is(err, adzap_errors.ErrEmailServiceStopped) {
		log.Warnf("cannot queue registration receipt for team %d, %v", team.ID, err)
	}

	return team.Sanitized(), nil
}
