package service

import (
	"context"
	"errors"
	"math"

	"kaiserhaus-checkout-service/internal/model"
)

// Interfaces que deben implementar los repositorios. Los servicios solo
// conocen estos contratos; en tests se sustituyen por fakes en memoria.

type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateStatusIf(ctx context.Context, orderID int64, from, to string) (bool, error)
	FindByUserPage(ctx context.Context, userID string, skip, limit int64) ([]*model.Order, int64, error)
	FindAllPage(ctx context.Context, skip, limit int64) ([]*model.Order, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type ProductRepository interface {
	FindByRef(ctx context.Context, ref model.ProductRef) (*model.Product, error)
	AdjustStock(ctx context.Context, ref model.ProductRef, delta int64) (*model.Product, error)
	BackfillQuantity(ctx context.Context) (int64, error)
}

type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, p *model.Payment) error
	FindLatestByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	SettlePending(ctx context.Context, orderID int64, method, status string) (bool, error)
	ExpirePending(ctx context.Context, orderID int64) (int64, error)
}

type CardRepository interface {
	Insert(ctx context.Context, card *model.Card) error
	FindByID(ctx context.Context, cardID, userID string) (*model.Card, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Card, error)
	Delete(ctx context.Context, cardID, userID string) error
}

// EventPublisher emite los eventos de dominio hacia Rabbit. La publicación es
// best effort: un broker caído no voltea un checkout ya persistido.
type EventPublisher interface {
	OrderPlaced(o *model.Order) error
	PaymentConfirmed(orderID int64, method string, amount float64) error
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrEmptyCart            = errors.New("el pedido debe contener al menos un item")
	ErrInvalidQuantity      = errors.New("la cantidad debe ser mayor que 0")
	ErrProductUnavailable   = errors.New("uno o más productos no existen o están inactivos")
	ErrOrderNotFound        = errors.New("pedido no encontrado")
	ErrPaymentNotFound      = errors.New("pago no encontrado")
	ErrCardNotFound         = errors.New("tarjeta no encontrada")
	ErrForbidden            = errors.New("forbidden")
	ErrAmountMismatch       = errors.New("el valor del pago no coincide con el total del pedido")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrFinalState           = errors.New("no se puede cambiar el estado de un pedido en estado final")
	ErrInvalidPaymentStatus = errors.New("el estado debe ser 'paid' o 'expired'")
	ErrInvalidCardNumber    = errors.New("número de tarjeta inválido")
	ErrInvalidCardHolder    = errors.New("el nombre debe tener al menos 2 caracteres")
)

// round2 redondea a centavos; los totales se componen ya redondeados.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func contains(arr []string, s string) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
