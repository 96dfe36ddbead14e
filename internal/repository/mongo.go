package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	s := &MongoStore{coll: db.Collection("messages")}
	_, _ = s.coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "community_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return s
}

func (s *MongoStore) FetchMessages(ctx context.Context, communityID, userID string) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"community_id": communityID,
		"$or": []bson.M{
			{"sender_id": userID},
			{"receiver_id": userID},
		},
	}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (s *MongoStore) FetchThread(ctx context.Context, communityID, userA, userB string) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"community_id": communityID,
		"$or": []bson.M{
			{"sender_id": userA, "receiver_id": userB},
			{"sender_id": userB, "receiver_id": userA},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (s *MongoStore) InsertMessage(ctx context.Context, communityID, senderID, receiverID, content string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	m := &domain.Message{
		ID:          uuid.NewString(),
		CommunityID: communityID,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
		IsRead:      false,
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, communityID, senderID, receiverID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{
		"community_id": communityID,
		"sender_id":    senderID,
		"receiver_id":  receiverID,
		"is_read":      false,
	}
	_, err := s.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	return err
}
