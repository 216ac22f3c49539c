package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/meinhoongagan/doctor-appointment/models"
)

const (
	colUsers         = "users"
	colDoctors       = "doctors"
	colAppointments  = "appointments"
	colNotifications = "notifications"
)

// MongoStore maps each collection to a MongoDB collection. Commit needs a
// replica set because it runs inside a multi-document transaction.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// EnsureIndexes creates the indexes the reminder query and user lookups rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	reminderIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "reminderSent", Value: 1},
			{Key: "appointmentAt", Value: 1},
		},
		Options: options.Index().SetName("due_reminders"),
	}
	if _, err := s.db.Collection(colAppointments).Indexes().CreateOne(ctx, reminderIndex); err != nil {
		return fmt.Errorf("appointments index: %w", err)
	}

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt"),
	}
	if _, err := s.db.Collection(colNotifications).Indexes().CreateOne(ctx, userIDIndex); err != nil {
		return fmt.Errorf("notifications index: %w", err)
	}

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_index"),
	}
	if _, err := s.db.Collection(colUsers).Indexes().CreateOne(ctx, emailIndex); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return &user, nil
}

func (s *MongoStore) SetUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection(colUsers).ReplaceOne(ctx,
		bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set user %s: %w", user.ID, err)
	}
	return nil
}

func (s *MongoStore) updateUser(ctx context.Context, uid string, set bson.M) error {
	res, err := s.db.Collection(colUsers).UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user %s: %w", uid, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) UpdateUserRole(ctx context.Context, uid string, role models.Role, at time.Time) error {
	return s.updateUser(ctx, uid, bson.M{"role": role, "updatedAt": at})
}

func (s *MongoStore) UpdateUserDisabled(ctx context.Context, uid string, disabled bool, at time.Time) error {
	return s.updateUser(ctx, uid, bson.M{"disabled": disabled, "updatedAt": at})
}

func (s *MongoStore) UpdateUserPushToken(ctx context.Context, uid, token string, at time.Time) error {
	return s.updateUser(ctx, uid, bson.M{"fcmToken": token, "updatedAt": at})
}

func (s *MongoStore) DeleteUser(ctx context.Context, uid string) error {
	if _, err := s.db.Collection(colUsers).DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete user %s: %w", uid, err)
	}
	return nil
}

func (s *MongoStore) AddDoctor(ctx context.Context, doctor *models.Doctor) (string, error) {
	if doctor.ID == "" {
		doctor.ID = NewID()
	}
	if _, err := s.db.Collection(colDoctors).InsertOne(ctx, doctor); err != nil {
		return "", fmt.Errorf("add doctor: %w", err)
	}
	return doctor.ID, nil
}

func (s *MongoStore) AddNotification(ctx context.Context, n *models.Notification) (string, error) {
	if n.ID == "" {
		n.ID = NewID()
	}
	if _, err := s.db.Collection(colNotifications).InsertOne(ctx, n); err != nil {
		return "", fmt.Errorf("add notification: %w", err)
	}
	return n.ID, nil
}

func (s *MongoStore) DueReminders(ctx context.Context, threshold time.Time, limit int) ([]models.Appointment, error) {
	filter := bson.M{
		"status":        models.StatusApproved,
		"reminderSent":  false,
		"appointmentAt": bson.M{"$lte": threshold},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "appointmentAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.db.Collection(colAppointments).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode due reminders: %w", err)
	}
	return appointments, nil
}

func (s *MongoStore) Commit(ctx context.Context, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if len(b.Notifications) > 0 {
			docs := make([]interface{}, len(b.Notifications))
			for i, n := range b.Notifications {
				docs[i] = n
			}
			if _, err := s.db.Collection(colNotifications).InsertMany(sc, docs); err != nil {
				return nil, fmt.Errorf("insert notifications: %w", err)
			}
		}
		for _, id := range b.ReminderSent {
			res, err := s.db.Collection(colAppointments).UpdateOne(sc,
				appointmentIDFilter(id), bson.M{"$set": bson.M{"reminderSent": true}})
			if err != nil {
				return nil, fmt.Errorf("mark reminder sent %s: %w", id, err)
			}
			if res.MatchedCount == 0 {
				return nil, fmt.Errorf("mark reminder sent %s: %w", id, ErrNotFound)
			}
		}
		return nil, nil
	})
	return err
}

// appointmentIDFilter matches an appointment whether its _id was stored as a
// string or as an ObjectID. The driver decodes ObjectIDs into the string ID
// as hex, so a plain string filter would never match those documents.
func appointmentIDFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
