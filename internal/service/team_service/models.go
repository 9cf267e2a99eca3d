package team_service

import (
	"strings"

	"github.com/adzap-tech/adzap-backend/internal/storage"
)

const (
	// MaxParticipantRegistrations is the hard cap on registered teams.
	MaxParticipantRegistrations = 600

	MinScore = 0.0
	MaxScore = 10.0
)

var validJudges = []string{"judge1", "judge2"}

type TeamService struct {
	Store storage.Store
	// MaxTeams defaults to MaxParticipantRegistrations when zero.
	MaxTeams int
}

func (t *TeamService) maxTeams() int {
	if t.MaxTeams > 0 {
		return t.MaxTeams
	}
	return MaxParticipantRegistrations
}

type MemberInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type TeamRegistration struct {
	TeamName    string        `json:"teamName" validate:"required"`
	TeamNumber  string        `json:"teamNumber"`
	Email       string        `json:"email" validate:"required,email"`
	Password    string        `json:"password" validate:"required,max=72"`
	Members     []MemberInput `json:"members"`
	ProductName string        `json:"productName"`
	Poster      any           `json:"poster"`
}

// IncomingTeam is one element of the bulk replace payload. The client
// never holds credentials, so Password is an optional plaintext reset;
// absent, the stored hash for the same id is carried over.
type IncomingTeam struct {
	ID          int64                          `json:"id"`
	TeamName    string                         `json:"teamName"`
	TeamNumber  string                         `json:"teamNumber"`
	Email       string                         `json:"email"`
	Password    string                         `json:"password"`
	Members     []MemberInput                  `json:"members"`
	ProductName string                         `json:"productName"`
	Poster      any                            `json:"poster"`
	Round1      *storage.RoundStanding         `json:"round1"`
	Round2      *storage.RoundStanding         `json:"round2"`
	Scores      map[string]storage.JudgeRounds `json:"scores"`
	CreatedAt   string                         `json:"createdAt"`
}

type RankingEntry struct {
	TeamID      int64   `json:"teamId"`
	TeamName    string  `json:"teamName"`
	TeamNumber  string  `json:"teamNumber"`
	ProductName string  `json:"productName"`
	Average     float64 `json:"average"`
}

// mapMembers coerces a raw member list into the stored shape, missing
// fields become empty strings.
func mapMembers(members []MemberInput) []storage.Member {
	out := make([]storage.Member, len(members))
	for i, m := range members {
		out[i] = storage.Member{
			Name:  strings.TrimSpace(m.Name),
			Phone: strings.TrimSpace(m.Phone),
			Email: strings.TrimSpace(m.Email),
		}
	}
	return out
}
