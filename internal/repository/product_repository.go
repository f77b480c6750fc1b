package repository

import (
	"context"

	"kaiserhaus-checkout-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection("products")}
}

// refFilter es el único punto donde se resuelve la referencia heterogénea:
// hex de ObjectID → _id; numérico → productId heredado; cualquier otra cosa
// se busca como productId string. Siempre exige producto activo.
func refFilter(ref model.ProductRef) bson.M {
	if ref.IsLegacy {
		return bson.M{"productId": ref.Legacy, "active": true}
	}
	if oid, err := primitive.ObjectIDFromHex(ref.Raw); err == nil {
		return bson.M{"_id": oid, "active": true}
	}
	return bson.M{"productId": ref.Raw, "active": true}
}

func (m *MongoProductRepository) FindByRef(ctx context.Context, ref model.ProductRef) (*model.Product, error) {
	var res model.Product
	err := m.col.FindOne(ctx, refFilter(ref)).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// AdjustStock aplica el delta con una sola operación condicional: para un
// decremento el filtro exige quantity >= |delta|, así dos checkouts
// concurrentes no pueden sobrevender. No hay check-then-write.
func (m *MongoProductRepository) AdjustStock(ctx context.Context, ref model.ProductRef, delta int64) (*model.Product, error) {
	filter := refFilter(ref)
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var res model.Product
	err := m.col.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"quantity": delta}}, opts).Decode(&res)
	if err == mongo.ErrNoDocuments {
		// Puede ser producto inexistente o stock corto; lo distinguimos
		// con una lectura aparte para devolver el error correcto.
		if _, lookupErr := m.FindByRef(ctx, ref); lookupErr == ErrNotFound {
			return nil, ErrNotFound
		} else if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrInsufficientStock
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// BackfillQuantity inicializa en 0 el campo quantity de productos viejos que
// no lo tienen. Correrlo dos veces no cambia nada.
func (m *MongoProductRepository) BackfillQuantity(ctx context.Context) (int64, error) {
	res, err := m.col.UpdateMany(ctx,
		bson.M{"quantity": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"quantity": int64(0)}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
