// publisher.go
package rabbit

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"kaiserhaus-checkout-service/internal/model"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeOrderPlaced      = "order_placed"
	ExchangePaymentConfirmed = "payment_confirmed"
)

// Publisher emite los eventos de checkout por exchanges fanout. Los
// consumidores (status de pedidos, notificaciones) declaran su propia queue
// y se bindean; acá solo declaramos los exchanges y publicamos.
type Publisher struct {
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) (*Publisher, error) {
	for _, exchange := range []string{ExchangeOrderPlaced, ExchangePaymentConfirmed} {
		err := ch.ExchangeDeclare(
			exchange,
			"fanout",
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, err
		}
	}
	return &Publisher{ch: ch}, nil
}

// Sobre del evento; el message va adentro, con correlation id para rastrear.
type envelope struct {
	CorrelationID string      `json:"correlation_id"`
	Exchange      string      `json:"exchange"`
	RoutingKey    string      `json:"routing_key"`
	Message       interface{} `json:"message"`
}

type orderPlacedMessage struct {
	OrderID  string           `json:"orderId"`
	UserID   string           `json:"userId"`
	Articles []articleMessage `json:"articles"`
	Shipping shippingMessage  `json:"shipping"`
}

type articleMessage struct {
	ArticleID string `json:"articleId"`
	Quantity  int64  `json:"quantity"`
}

type shippingMessage struct {
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Province     string `json:"province"`
	Comments     string `json:"comments"`
}

type paymentConfirmedMessage struct {
	OrderID string  `json:"orderId"`
	Method  string  `json:"method"`
	Amount  float64 `json:"amount"`
}

func (p *Publisher) OrderPlaced(o *model.Order) error {
	articles := make([]articleMessage, 0, len(o.Items))
	for _, it := range o.Items {
		articles = append(articles, articleMessage{
			ArticleID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	return p.publish(ExchangeOrderPlaced, orderPlacedMessage{
		OrderID:  strconv.FormatInt(o.OrderID, 10),
		UserID:   o.UserID,
		Articles: articles,
		Shipping: shippingMessage{
			AddressLine1: o.Address.Street + " " + o.Address.Number,
			City:         o.Address.City,
			PostalCode:   o.Address.PostalCode,
			Province:     o.Address.Region,
			Comments:     o.Address.Complement,
		},
	})
}

func (p *Publisher) PaymentConfirmed(orderID int64, method string, amount float64) error {
	return p.publish(ExchangePaymentConfirmed, paymentConfirmedMessage{
		OrderID: strconv.FormatInt(orderID, 10),
		Method:  method,
		Amount:  amount,
	})
}

func (p *Publisher) publish(exchange string, message interface{}) error {
	body, err := json.Marshal(envelope{
		CorrelationID: uuid.NewString(),
		Exchange:      exchange,
		Message:       message,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		exchange,
		"", // fanout ignora routing key
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	log.Printf("🐰 Evento publicado en %s", exchange)
	return nil
}
