// dto.go
package dto

import (
	"time"

	"kaiserhaus-checkout-service/internal/model"
)

// CheckoutRequest es el carrito tal como llega del cliente. Los precios NO
// vienen del cliente: se toman del catálogo al momento del checkout.
type CheckoutRequest struct {
	Items    []CheckoutItem   `json:"items" binding:"required"`
	Delivery DeliveryDTO      `json:"delivery" binding:"required"`
	Payment  PaymentSelection `json:"payment" binding:"required"`
}

type CheckoutItem struct {
	ProductID model.ProductRef `json:"productId"`
	Quantity  int64            `json:"quantity"`
	Note      string           `json:"note"`
}

type DeliveryDTO struct {
	Type    string     `json:"type"`
	Address AddressDTO `json:"address" binding:"required"`
}

type AddressDTO struct {
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	City         string `json:"city" binding:"required"`
	Region       string `json:"region" binding:"required"`
	PostalCode   string `json:"postalCode" binding:"required"`
	Complement   string `json:"complement"`
}

type PaymentSelection struct {
	Method string `json:"method" binding:"required,oneof=pix card"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderPage es la página de pedidos con los metadatos de paginación.
type OrderPage struct {
	Orders     []*model.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int64          `json:"page"`
	PageSize   int64          `json:"pageSize"`
	TotalPages int64          `json:"totalPages"`
}

type PixPaymentRequest struct {
	OrderID int64   `json:"orderId" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
}

type PixPaymentResponse struct {
	OrderID       int64  `json:"orderId"`
	QRCode        string `json:"qrcode"`
	CopyPasteCode string `json:"copyPasteCode"`
	ExpiresAt     int64  `json:"expiresAt"`
}

// PixWebhookRequest llega desde el proveedor externo, sin autenticación.
type PixWebhookRequest struct {
	OrderID int64  `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type CardPaymentRequest struct {
	OrderID int64  `json:"orderId" binding:"required"`
	CardID  string `json:"cardId" binding:"required"`
}

type CardPaymentResponse struct {
	OrderID       int64  `json:"orderId"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

type StockAdjustRequest struct {
	Op       string `json:"op" binding:"required,oneof=add remove"`
	Quantity int64  `json:"quantity" binding:"required"`
}

type CreateCardRequest struct {
	Number     string `json:"number" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
	HolderName string `json:"holderName" binding:"required"`
	Month      int    `json:"month" binding:"required,min=1,max=12"`
	Year       int    `json:"year" binding:"required"`
}

type CardResponse struct {
	ID         string    `json:"id"`
	Last4      string    `json:"last4"`
	HolderName string    `json:"holderName"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	CreatedAt  time.Time `json:"createdAt"`
}
