package repository

import (
	"context"
	"time"

	"kaiserhaus-checkout-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCardRepository struct {
	col *mongo.Collection
}

func NewMongoCardRepository(db *mongo.Database) *MongoCardRepository {
	return &MongoCardRepository{col: db.Collection("cards")}
}

func (m *MongoCardRepository) Insert(ctx context.Context, card *model.Card) error {
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}

	res, err := m.col.InsertOne(ctx, card)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		card.ID = oid
	}
	return nil
}

// FindByID solo encuentra tarjetas del dueño: el filtro incluye user_id.
func (m *MongoCardRepository) FindByID(ctx context.Context, cardID, userID string) (*model.Card, error) {
	oid, err := primitive.ObjectIDFromHex(cardID)
	if err != nil {
		return nil, ErrNotFound
	}

	var res model.Card
	err = m.col.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoCardRepository) FindByUser(ctx context.Context, userID string) ([]*model.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Card
	for cur.Next(ctx) {
		var v model.Card
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoCardRepository) Delete(ctx context.Context, cardID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(cardID)
	if err != nil {
		return ErrNotFound
	}

	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
