package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Nombres de secuencias.
const (
	SequenceOrders   = "orders"
	SequencePayments = "payments"
)

// MongoSequenceRepository entrega ids estrictamente crecientes sin duplicados
// usando $inc atómico sobre la colección sequences. Reemplaza al viejo
// "leer el máximo y sumar uno", que bajo concurrencia repartía el mismo id
// a dos pedidos.
type MongoSequenceRepository struct {
	col *mongo.Collection
}

func NewMongoSequenceRepository(db *mongo.Database) *MongoSequenceRepository {
	return &MongoSequenceRepository{col: db.Collection("sequences")}
}

func (m *MongoSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Value int64 `bson:"value"`
	}
	err := m.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}
