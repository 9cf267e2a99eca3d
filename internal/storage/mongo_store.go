package storage

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
)

// MongoStore is the document-database adapter. Duplicate emails are
// enforced by a unique index on emailKey per collection; the capacity
// check stays count-then-insert, which is best effort without
// multi-document transactions.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	teams    *mongo.Collection
	admins   *mongo.Collection
	judges   *mongo.Collection
	messages *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri string, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w, cannot connect to mongodb, %w", adzap_errors.ErrInternal, err)
	}
	if dbName == "" {
		dbName = "adzap"
	}
	db := client.Database(dbName)
	ms := &MongoStore{
		client:   client,
		db:       db,
		teams:    db.Collection("teams"),
		admins:   db.Collection("adminAccounts"),
		judges:   db.Collection("judgeAccounts"),
		messages: db.Collection("contactMessages"),
	}
	if err := ms.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	log.WithField("database", dbName).Info("connected to mongodb")
	return ms, nil
}

func (m *MongoStore) ensureIndexes(ctx context.Context) error {
	emailKeyIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "emailKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{m.teams, m.admins, m.judges} {
		if _, err := coll.Indexes().CreateOne(ctx, emailKeyIndex); err != nil {
			return fmt.Errorf("%w, cannot create emailKey index on %s, %w",
				adzap_errors.ErrInternal, coll.Name(), err)
		}
	}
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{m.teams, m.admins, m.judges, m.messages} {
		if _, err := coll.Indexes().CreateOne(ctx, idIndex); err != nil {
			return fmt.Errorf("%w, cannot create id index on %s, %w",
				adzap_errors.ErrInternal, coll.Name(), err)
		}
	}
	return nil
}

func (m *MongoStore) Mode() string { return "mongodb" }

func (m *MongoStore) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w, mongodb unreachable, %w", adzap_errors.ErrInternal, err)
	}
	return nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) Bootstrap(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Teams:           []Team{},
		ContactMessages: []ContactMessage{},
		AdminAccounts:   []Account{},
		JudgeAccounts:   []Account{},
	}
	teams, err := m.ListTeams(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Teams = teams
	messages, err := m.ListContactMessages(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.ContactMessages = messages
	for kind, dst := range map[AccountKind]*[]Account{
		KindAdmin: &snap.AdminAccounts,
		KindJudge: &snap.JudgeAccounts,
	} {
		cursor, err := m.accountColl(kind).Find(ctx, bson.M{})
		if err != nil {
			return Snapshot{}, m.wrap(err, "cannot list accounts")
		}
		if err := cursor.All(ctx, dst); err != nil {
			return Snapshot{}, m.wrap(err, "cannot decode accounts")
		}
	}
	return snap, nil
}

func (m *MongoStore) InsertTeam(ctx context.Context, team Team, maxTeams int) error {
	count, err := m.teams.CountDocuments(ctx, bson.M{})
	if err != nil {
		return m.wrap(err, "cannot count teams")
	}
	if int(count) >= maxTeams {
		return adzap_errors.ErrCapacityFull
	}
	if _, err := m.teams.InsertOne(ctx, team); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return adzap_errors.ErrDuplicateEmail
		}
		return m.wrap(err, "cannot insert team")
	}
	return nil
}

func (m *MongoStore) FindTeamByEmailKey(ctx context.Context, emailKey string) (Team, error) {
	var team Team
	err := m.teams.FindOne(ctx, bson.M{"emailKey": emailKey}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Team{}, adzap_errors.ErrNotFound
		}
		return Team{}, m.wrap(err, "cannot find team by emailKey")
	}
	return team, nil
}

func (m *MongoStore) GetTeamByID(ctx context.Context, id int64) (Team, error) {
	var team Team
	err := m.teams.FindOne(ctx, bson.M{"id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Team{}, adzap_errors.ErrNotFound
		}
		return Team{}, m.wrap(err, "cannot find team by id")
	}
	return team, nil
}

func (m *MongoStore) ListTeams(ctx context.Context) ([]Team, error) {
	cursor, err := m.teams.Find(ctx, bson.M{})
	if err != nil {
		return nil, m.wrap(err, "cannot list teams")
	}
	teams := []Team{}
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, m.wrap(err, "cannot decode teams")
	}
	return teams, nil
}

func (m *MongoStore) ReplaceTeams(ctx context.Context, teams []Team) error {
	if _, err := m.teams.DeleteMany(ctx, bson.M{}); err != nil {
		return m.wrap(err, "cannot clear teams")
	}
	if len(teams) == 0 {
		return nil
	}
	docs := make([]any, len(teams))
	for i, team := range teams {
		docs[i] = team
	}
	opts := options.InsertMany().SetOrdered(false)
	if _, err := m.teams.InsertMany(ctx, docs, opts); err != nil {
		return m.wrap(err, "cannot insert replacement teams")
	}
	return nil
}

func (m *MongoStore) UpdateTeam(ctx context.Context, id int64, fn func(*Team) error) (Team, error) {
	team, err := m.GetTeamByID(ctx, id)
	if err != nil {
		return Team{}, err
	}
	if err := fn(&team); err != nil {
		return Team{}, err
	}
	if _, err := m.teams.ReplaceOne(ctx, bson.M{"id": id}, team); err != nil {
		return Team{}, m.wrap(err, "cannot update team")
	}
	return team, nil
}

func (m *MongoStore) MutateTeams(ctx context.Context, fn func([]Team) []Team) ([]Team, error) {
	teams, err := m.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	teams = fn(teams)
	if err := m.ReplaceTeams(ctx, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (m *MongoStore) DeleteTeams(ctx context.Context, ids []int64) (int, error) {
	res, err := m.teams.DeleteMany(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return 0, m.wrap(err, "cannot delete teams")
	}
	return int(res.DeletedCount), nil
}

func (m *MongoStore) accountColl(kind AccountKind) *mongo.Collection {
	if kind == KindAdmin {
		return m.admins
	}
	return m.judges
}

func (m *MongoStore) CountAccounts(ctx context.Context, kind AccountKind) (int, error) {
	count, err := m.accountColl(kind).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, m.wrap(err, "cannot count accounts")
	}
	return int(count), nil
}

func (m *MongoStore) InsertAccount(ctx context.Context, kind AccountKind, account Account, maxAccounts int) error {
	coll := m.accountColl(kind)
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return m.wrap(err, "cannot count accounts")
	}
	if int(count) >= maxAccounts {
		return adzap_errors.ErrCapacityFull
	}
	if _, err := coll.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return adzap_errors.ErrDuplicateEmail
		}
		return m.wrap(err, "cannot insert account")
	}
	return nil
}

func (m *MongoStore) FindAccountByEmailKey(ctx context.Context, kind AccountKind, emailKey string) (Account, error) {
	var account Account
	err := m.accountColl(kind).FindOne(ctx, bson.M{"emailKey": emailKey}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Account{}, adzap_errors.ErrNotFound
		}
		return Account{}, m.wrap(err, "cannot find account by emailKey")
	}
	return account, nil
}

func (m *MongoStore) InsertContactMessage(ctx context.Context, msg ContactMessage) error {
	if _, err := m.messages.InsertOne(ctx, msg); err != nil {
		return m.wrap(err, "cannot insert contact message")
	}
	return nil
}

func (m *MongoStore) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.messages.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, m.wrap(err, "cannot list contact messages")
	}
	messages := []ContactMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, m.wrap(err, "cannot decode contact messages")
	}
	return messages, nil
}

func (m *MongoStore) DeleteContactMessage(ctx context.Context, id int64) error {
	res, err := m.messages.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return m.wrap(err, "cannot delete contact message")
	}
	if res.DeletedCount == 0 {
		return adzap_errors.ErrNotFound
	}
	return nil
}

func (m *MongoStore) wrap(err error, contextMessage string) error {
	err = fmt.Errorf("%w, %s, %w", adzap_errors.ErrInternal, contextMessage, err)
	log.Error(err)
	return err
}
