package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type AccountKind string

const (
	KindAdmin AccountKind = "admin"
	KindJudge AccountKind = "judge"
)

// Member is one entry of a team's roster. Missing fields are kept as
// empty strings, the intended roster size of 5 is not enforced.
type Member struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email" bson:"email"`
}

type RoundStanding struct {
	AvgScore float64 `json:"avgScore" bson:"avgScore"`
	Selected bool    `json:"selected" bson:"selected"`
}

// JudgeRounds maps a round key ("round1", "round2") to the score a judge
// gave for that round. Older deployments persisted a single
// {"round": N, "score": X} object per judge; both shapes decode into the
// canonical map so business logic never sees the legacy branch.
type JudgeRounds map[string]float64

const (
	RoundKey1 = "round1"
	RoundKey2 = "round2"
)

func RoundKey(round int) string {
	return fmt.Sprintf("round%d", round)
}

func (j *JudgeRounds) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*j = canonicalJudgeRounds(raw)
	return nil
}

func (j *JudgeRounds) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	var untyped map[string]any
	if err := rv.Unmarshal(&untyped); err != nil {
		return err
	}
	raw := make(map[string]float64, len(untyped))
	for k, v := range untyped {
		if f, ok := toFloat(v); ok {
			raw[k] = f
		}
	}
	*j = canonicalJudgeRounds(raw)
	return nil
}

func canonicalJudgeRounds(raw map[string]float64) JudgeRounds {
	if round, ok := raw["round"]; ok {
		if score, ok := raw["score"]; ok {
			return JudgeRounds{RoundKey(int(round)): score}
		}
	}
	out := make(JudgeRounds)
	for _, key := range []string{RoundKey1, RoundKey2} {
		if score, ok := raw[key]; ok {
			out[key] = score
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Team is a registered competing group and the participant-login
// principal. EmailKey is the case-insensitive lookup key and, together
// with PasswordHash, is stripped before any record leaves the service.
type Team struct {
	ID           int64                  `json:"id" bson:"id"`
	TeamName     string                 `json:"teamName" bson:"teamName"`
	TeamNumber   string                 `json:"teamNumber" bson:"teamNumber"`
	Email        string                 `json:"email" bson:"email"`
	EmailKey     string                 `json:"emailKey,omitempty" bson:"emailKey"`
	PasswordHash string                 `json:"passwordHash,omitempty" bson:"passwordHash"`
	Members      []Member               `json:"members" bson:"members"`
	ProductName  string                 `json:"productName" bson:"productName"`
	Poster       any                    `json:"poster,omitempty" bson:"poster,omitempty"`
	Round1       RoundStanding          `json:"round1" bson:"round1"`
	Round2       RoundStanding          `json:"round2" bson:"round2"`
	Scores       map[string]JudgeRounds `json:"scores" bson:"scores"`
	CreatedAt    string                 `json:"createdAt" bson:"createdAt"`
}

// Sanitized returns a copy safe for transmission.
func (t Team) Sanitized() Team {
	clean := t
	clean.EmailKey = ""
	clean.PasswordHash = ""
	if clean.Members == nil {
		clean.Members = []Member{}
	}
	if clean.Scores == nil {
		clean.Scores = map[string]JudgeRounds{}
	}
	return clean
}

// Account is an admin or judge staff identity. Both kinds are
// structurally identical and live in separate collections.
type Account struct {
	ID           int64  `json:"id" bson:"id"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	EmailKey     string `json:"emailKey,omitempty" bson:"emailKey"`
	PasswordHash string `json:"passwordHash,omitempty" bson:"passwordHash"`
	CreatedAt    string `json:"createdAt" bson:"createdAt"`
}

func (a Account) Sanitized() Account {
	clean := a
	clean.EmailKey = ""
	clean.PasswordHash = ""
	return clean
}

// ContactMessage is an append-only log entry, kept newest-first.
type ContactMessage struct {
	ID        int64  `json:"id" bson:"id"`
	Name      string `json:"name" bson:"name"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone" bson:"phone"`
	Subject   string `json:"subject" bson:"subject"`
	Message   string `json:"message" bson:"message"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
}

// Snapshot is the full persisted state, the unit of the bootstrap read.
type Snapshot struct {
	Teams           []Team           `json:"teams"`
	ContactMessages []ContactMessage `json:"contactMessages"`
	AdminAccounts   []Account        `json:"adminAccounts"`
	JudgeAccounts   []Account        `json:"judgeAccounts"`
}

func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
