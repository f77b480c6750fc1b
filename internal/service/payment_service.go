package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"time"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/repository"

	"github.com/google/uuid"
)

// Ventana de validez de un pago pix.
const pixExpiry = 30 * time.Minute

// centsOf lleva un monto a centavos enteros. La comparación declarado vs
// total se hace en centavos: el ruido de float por debajo del medio centavo
// se tolera, y cualquier diferencia de un centavo o más rechaza. Comparar
// los float64 directo contra 0.01 deja pasar 42.99 vs 43.00, porque la
// resta da 0.00999999999999801.
func centsOf(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Tasa de aprobación del autorizador simulado de tarjeta.
const cardApprovalRate = 0.9

type PaymentService struct {
	payments PaymentRepository
	orders   OrderRepository
	cards    CardRepository
	seq      SequenceRepository
	orderSvc *OrderService
	events   EventPublisher // puede ser nil

	merchantName string
	merchantCity string

	// authorize decide la suerte de un cargo de tarjeta; se inyecta en tests.
	authorize func() bool
}

func NewPaymentService(payments PaymentRepository, orders OrderRepository, cards CardRepository, seq SequenceRepository, orderSvc *OrderService, events EventPublisher, merchantName, merchantCity string) *PaymentService {
	return &PaymentService{
		payments:     payments,
		orders:       orders,
		cards:        cards,
		seq:          seq,
		orderSvc:     orderSvc,
		events:       events,
		merchantName: merchantName,
		merchantCity: merchantCity,
		authorize:    func() bool { return rand.Float64() < cardApprovalRate },
	}
}

// CreatePixPayment arma el pago pix pendiente: código copia-y-pega con
// checksum, QR en base64 y expiración a 30 minutos. El valor declarado tiene
// que coincidir con el total del pedido (tolerancia de un centavo). Un
// intento nuevo supersede a los pendientes anteriores, nunca conviven dos.
func (s *PaymentService) CreatePixPayment(ctx context.Context, orderID int64, amount float64) (*dto.PixPaymentResponse, error) {
	ord, err := s.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consultando pedido: %w", err)
	}

	if centsOf(amount) != centsOf(ord.Total) {
		return nil, ErrAmountMismatch
	}

	if _, err := s.payments.ExpirePending(ctx, orderID); err != nil {
		return nil, fmt.Errorf("expirando pagos pendientes: %w", err)
	}

	paymentID, err := s.seq.Next(ctx, repository.SequencePayments)
	if err != nil {
		return nil, fmt.Errorf("asignando id de pago: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(pixExpiry).Unix()
	code := s.buildCopyPasteCode(orderID, amount)
	qr := mockQRCode()

	payment := &model.Payment{
		PaymentID:     paymentID,
		OrderID:       orderID,
		Method:        model.PaymentMethodPix,
		Amount:        amount,
		Status:        model.PaymentStatusPending,
		QRCode:        qr,
		CopyPasteCode: code,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return nil, fmt.Errorf("persistiendo pago: %w", err)
	}

	return &dto.PixPaymentResponse{
		OrderID:       orderID,
		QRCode:        qr,
		CopyPasteCode: code,
		ExpiresAt:     expiresAt,
	}, nil
}

// ProcessPixWebhook aplica la confirmación externa. El proveedor entrega
// at-least-once: el settle condicional hace que la réplica no matchee nada y
// devuelva false sin re-aplicar efectos. false no es un error, es "no había
// pago pendiente para ese pedido".
func (s *PaymentService) ProcessPixWebhook(ctx context.Context, orderID int64, status string) (bool, error) {
	if status != model.PaymentStatusPaid && status != model.PaymentStatusExpired {
		return false, ErrInvalidPaymentStatus
	}

	settled, err := s.payments.SettlePending(ctx, orderID, model.PaymentMethodPix, status)
	if err != nil {
		return false, fmt.Errorf("cerrando pago: %w", err)
	}
	if !settled {
		return false, nil
	}

	if status == model.PaymentStatusPaid {
		if err := s.orderSvc.ConfirmOrder(ctx, orderID); err != nil {
			return true, err
		}
		s.publishConfirmed(orderID, model.PaymentMethodPix)
	}
	return true, nil
}

// CreateCardPayment es el flujo síncrono: una sola decisión del autorizador
// por llamada, sin reintentos. Se cobra el total del pedido, ignorando
// cualquier valor que mande el cliente. Aprobado ⇒ paid y el pedido pasa a
// in_preparation; rechazado ⇒ expired y el pedido queda como estaba.
func (s *PaymentService) CreateCardPayment(ctx context.Context, userID string, orderID int64, cardID string) (*dto.CardPaymentResponse, error) {
	ord, err := s.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consultando pedido: %w", err)
	}

	if _, err := s.cards.FindByID(ctx, cardID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("consultando tarjeta: %w", err)
	}

	if _, err := s.payments.ExpirePending(ctx, orderID); err != nil {
		return nil, fmt.Errorf("expirando pagos pendientes: %w", err)
	}

	paymentID, err := s.seq.Next(ctx, repository.SequencePayments)
	if err != nil {
		return nil, fmt.Errorf("asignando id de pago: %w", err)
	}

	approved := s.authorize()
	status := model.PaymentStatusExpired
	if approved {
		status = model.PaymentStatusPaid
	}
	transactionID := uuid.NewString()

	payment := &model.Payment{
		PaymentID:     paymentID,
		OrderID:       orderID,
		Method:        model.PaymentMethodCard,
		Amount:        ord.Total,
		Status:        status,
		TransactionID: transactionID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return nil, fmt.Errorf("persistiendo pago: %w", err)
	}

	if approved {
		if err := s.orderSvc.ConfirmOrder(ctx, orderID); err != nil {
			return nil, err
		}
		s.publishConfirmed(orderID, model.PaymentMethodCard)
	}

	return &dto.CardPaymentResponse{
		OrderID:       orderID,
		Status:        status,
		TransactionID: transactionID,
	}, nil
}

// GetPaymentForOrder devuelve el último intento de pago, o nil si el pedido
// todavía no tiene ninguno.
func (s *PaymentService) GetPaymentForOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	p, err := s.payments.FindLatestByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consultando pago: %w", err)
	}
	return p, nil
}

// CancelPendingPayments marca expirados los pagos pendientes de un pedido.
func (s *PaymentService) CancelPendingPayments(ctx context.Context, orderID int64) (int64, error) {
	n, err := s.payments.ExpirePending(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("expirando pagos pendientes: %w", err)
	}
	return n, nil
}

func (s *PaymentService) publishConfirmed(orderID int64, method string) {
	if s.events == nil {
		return
	}
	ord, err := s.orders.FindByOrderID(context.Background(), orderID)
	if err != nil {
		return
	}
	if err := s.events.PaymentConfirmed(orderID, method, ord.Total); err != nil {
		log.Println("❌ Error publicando payment_confirmed:", err)
	}
}

// buildCopyPasteCode compone el código pix copia-y-pega: id del pedido,
// monto y comercio fijo, con un sufijo de checksum de 4 dígitos. Mismo
// payload ⇒ mismo código.
func (s *PaymentService) buildCopyPasteCode(orderID int64, amount float64) string {
	payload := fmt.Sprintf(
		"00020126580014br.gov.bcb.pix0136%d520400005303986540%.2f5802BR59%02d%s60%02d%s62070503***6304",
		orderID, amount,
		len(s.merchantName), s.merchantName,
		len(s.merchantCity), s.merchantCity,
	)

	h := fnv.New32a()
	h.Write([]byte(payload))
	return payload + fmt.Sprintf("%04d", h.Sum32()%10000)
}

// PNG de 1x1 usado como QR simulado; un proveedor real generaría la imagen.
var qrPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde, 0x00, 0x00, 0x00,
	0x09, 0x70, 0x48, 0x59, 0x73, 0x00, 0x00, 0x0b, 0x13, 0x00, 0x00, 0x0b,
	0x13, 0x01, 0x00, 0x9a, 0x9c, 0x18, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44,
	0x41, 0x54, 0x78, 0x9c, 0x63, 0xf8, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func mockQRCode() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPixel)
}
