package repository

import (
	"context"
	"time"

	"kaiserhaus-checkout-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPaymentRepository struct {
	col *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{col: db.Collection("payments")}
}

func (m *MongoPaymentRepository) Insert(ctx context.Context, p *model.Payment) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, p)
	return err
}

// FindLatestByOrderID devuelve el intento más reciente (el pedido guarda
// historial de pagos, pero a los clientes les interesa el último).
func (m *MongoPaymentRepository) FindLatestByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var res model.Payment
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}, opts).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// SettlePending cierra el pago pendiente del pedido en un solo UpdateOne
// condicional: el filtro exige status pending, así una entrega repetida del
// webhook no matchea nada y no re-aplica efectos. Devuelve false si no había
// pago pendiente (condición esperada, no un error).
func (m *MongoPaymentRepository) SettlePending(ctx context.Context, orderID int64, method, status string) (bool, error) {
	filter := bson.M{
		"order_id": orderID,
		"status":   model.PaymentStatusPending,
	}
	if method != "" {
		filter["method"] = method
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
	}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ExpirePending marca expirados todos los pagos pendientes del pedido.
// Se usa para superseder un intento viejo antes de crear uno nuevo.
func (m *MongoPaymentRepository) ExpirePending(ctx context.Context, orderID int64) (int64, error) {
	res, err := m.col.UpdateMany(ctx,
		bson.M{"order_id": orderID, "status": model.PaymentStatusPending},
		bson.M{"$set": bson.M{
			"status":     model.PaymentStatusExpired,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
