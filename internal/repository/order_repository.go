package repository

import (
	"context"
	"time"

	"kaiserhaus-checkout-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, o)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID int64) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// UpdateStatusIf cambia el estado solo si el actual sigue siendo `from`.
// El filtro condicional es lo que hace idempotente la confirmación: una
// réplica del webhook no encuentra documento y no vuelve a aplicar efectos.
func (m *MongoOrderRepository) UpdateStatusIf(ctx context.Context, orderID int64, from, to string) (bool, error) {
	filter := bson.M{"order_id": orderID, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		},
	}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (m *MongoOrderRepository) FindByUserPage(ctx context.Context, userID string, skip, limit int64) ([]*model.Order, int64, error) {
	return m.findPage(ctx, bson.M{"user_id": userID}, skip, limit)
}

func (m *MongoOrderRepository) FindAllPage(ctx context.Context, skip, limit int64) ([]*model.Order, int64, error) {
	return m.findPage(ctx, bson.M{}, skip, limit)
}

func (m *MongoOrderRepository) findPage(ctx context.Context, filter bson.M, skip, limit int64) ([]*model.Order, int64, error) {
	total, err := m.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, 0, err
		}
		out = append(out, &v)
	}
	return out, total, cur.Err()
}

// CountByStatus arma los contadores del tablero admin.
func (m *MongoOrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	statuses := []string{
		model.OrderStatusPending,
		model.OrderStatusInPreparation,
		model.OrderStatusOutForDelivery,
		model.OrderStatusCompleted,
	}

	out := make(map[string]int64, len(statuses)+1)
	for _, s := range statuses {
		n, err := m.col.CountDocuments(ctx, bson.M{"status": s})
		if err != nil {
			return nil, err
		}
		out[s] = n
	}

	total, err := m.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out["total"] = total
	return out, nil
}
