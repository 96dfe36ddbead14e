package directory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
)

type MongoResolver struct {
	participants *mongo.Collection
	communities  *mongo.Collection
	memberships  *mongo.Collection
}

func NewMongoResolver(db *mongo.Database) *MongoResolver {
	r := &MongoResolver{
		participants: db.Collection("participants"),
		communities:  db.Collection("communities"),
		memberships:  db.Collection("memberships"),
	}
	_, _ = r.participants.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "community_id", Value: 1}, {Key: "user_id", Value: 1}},
	})
	return r
}

func (r *MongoResolver) Resolve(ctx context.Context, communityID, userID string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Participant
	err := r.participants.FindOne(ctx, bson.M{"community_id": communityID, "user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.Role.Valid() {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MongoResolver) CommunityName(ctx context.Context, communityID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var doc struct {
		Name string `bson:"name"`
	}
	err := r.communities.FindOne(ctx, bson.M{"_id": communityID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.Name, nil
}

func (r *MongoResolver) Memberships(ctx context.Context, userID string) ([]domain.Membership, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := r.memberships.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Membership{}
	for cur.Next(ctx) {
		var m domain.Membership
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		if m.CommunityName == "" {
			if name, err := r.CommunityName(ctx, m.CommunityID); err == nil {
				m.CommunityName = name
			}
		}
		out = append(out, m)
	}
	return out, cur.Err()
}
