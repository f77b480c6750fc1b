// models.go
package model

import (
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estados del pedido. El flujo normal avanza hacia adelante;
// cancelled/expired solo se alcanzan desde pending.
const (
	OrderStatusPending        = "pending"
	OrderStatusInPreparation  = "in_preparation"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
	OrderStatusExpired        = "expired"
)

// Estados del pago. Solo transiciones hacia adelante: pending → paid|expired.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusExpired = "expired"
)

const (
	PaymentMethodPix  = "pix"
	PaymentMethodCard = "card"
)

const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"
)

// Product vive en el catálogo; acá solo lo leemos y ajustamos stock.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID    int64              `bson:"productId,omitempty" json:"productId,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	CategoryID  string             `bson:"category_id" json:"categoryId"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int64              `bson:"quantity" json:"quantity"`
	Active      bool               `bson:"active" json:"active"`
}

// ProductRef es la referencia heterogénea a un producto: puede llegar como
// clave del catálogo (hex de ObjectID), como id numérico heredado, o como
// string numérico. La resolución a query de Mongo vive en el repositorio;
// acá solo normalizamos la forma en que llegó.
type ProductRef struct {
	Raw      string
	Legacy   int64
	IsLegacy bool
}

// ParseProductRef interpreta un id que llega como path param.
func ParseProductRef(s string) ProductRef {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ProductRef{Raw: s, Legacy: n, IsLegacy: true}
	}
	return ProductRef{Raw: s}
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*r = ProductRef{Raw: strconv.FormatInt(n, 10), Legacy: n, IsLegacy: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseProductRef(s)
	return nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.IsLegacy {
		return json.Marshal(r.Legacy)
	}
	return json.Marshal(r.Raw)
}

func (r ProductRef) String() string { return r.Raw }

func (r ProductRef) IsZero() bool { return r.Raw == "" }

// Order es el pedido persistido por el checkout. Los items y la dirección son
// snapshots inmutables tomados al momento de crear el pedido.
type Order struct {
	OrderID       int64       `bson:"order_id" json:"orderId"`
	UserID        string      `bson:"user_id" json:"userId"`
	Status        string      `bson:"status" json:"status"`
	Items         []OrderItem `bson:"items" json:"items"`
	Address       Address     `bson:"address" json:"address"`
	DeliveryType  string      `bson:"delivery_type" json:"deliveryType"`
	DeliveryFee   float64     `bson:"delivery_fee" json:"deliveryFee"`
	Total         float64     `bson:"total" json:"total"`
	PaymentMethod string      `bson:"payment_method" json:"paymentMethod"`
	CreatedAt     time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updatedAt"`
}

// OrderItem congela precio y datos de presentación del producto al momento
// del pedido; no sigue al catálogo.
type OrderItem struct {
	ItemID    string          `bson:"item_id" json:"id"`
	ProductID string          `bson:"product_id" json:"productId"`
	Quantity  int64           `bson:"quantity" json:"quantity"`
	Note      string          `bson:"note,omitempty" json:"note,omitempty"`
	UnitPrice float64         `bson:"unit_price" json:"unitPrice"`
	LineTotal float64         `bson:"line_total" json:"lineTotal"`
	Product   ProductSnapshot `bson:"product" json:"product"`
}

type ProductSnapshot struct {
	Name     string `bson:"name" json:"name"`
	Image    string `bson:"image" json:"image"`
	Category string `bson:"category" json:"category"`
}

type Address struct {
	Street       string `bson:"street" json:"street"`
	Number       string `bson:"number" json:"number"`
	Neighborhood string `bson:"neighborhood" json:"neighborhood"`
	City         string `bson:"city" json:"city"`
	Region       string `bson:"region" json:"region"`
	PostalCode   string `bson:"postal_code" json:"postalCode"`
	Complement   string `bson:"complement,omitempty" json:"complement,omitempty"`
}

type Payment struct {
	PaymentID     int64     `bson:"payment_id" json:"paymentId"`
	OrderID       int64     `bson:"order_id" json:"orderId"`
	Method        string    `bson:"method" json:"method"`
	Amount        float64   `bson:"amount" json:"amount"`
	Status        string    `bson:"status" json:"status"`
	QRCode        string    `bson:"qrcode,omitempty" json:"qrcode,omitempty"`
	CopyPasteCode string    `bson:"copy_paste_code,omitempty" json:"copyPasteCode,omitempty"`
	ExpiresAt     int64     `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	TransactionID string    `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// Card guarda la tarjeta con PAN y CVV sellados (nunca en claro).
type Card struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"userId"`
	HolderName   string             `bson:"holder_name" json:"holderName"`
	SealedNumber string             `bson:"sealed_number" json:"-"`
	SealedCVV    string             `bson:"sealed_cvv" json:"-"`
	Last4        string             `bson:"last4" json:"last4"`
	Month        int                `bson:"month" json:"month"`
	Year         int                `bson:"year" json:"year"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}
