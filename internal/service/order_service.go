package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/repository"
)

// Tarifa plana de entrega express. La entrega estándar no cobra.
const ExpressDeliveryFee = 17.99

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	seq      SequenceRepository
	events   EventPublisher // puede ser nil (tests, arranque sin broker)
}

func NewOrderService(orders OrderRepository, products ProductRepository, seq SequenceRepository, events EventPublisher) *OrderService {
	return &OrderService{orders: orders, products: products, seq: seq, events: events}
}

// Transiciones permitidas por rol. El admin empuja el pedido hacia adelante;
// el dueño solo puede cancelar mientras siga pendiente.
var adminTransitions = map[string][]string{
	model.OrderStatusPending:        {model.OrderStatusInPreparation, model.OrderStatusCancelled},
	model.OrderStatusInPreparation:  {model.OrderStatusOutForDelivery},
	model.OrderStatusOutForDelivery: {model.OrderStatusCompleted},
}

var userTransitions = map[string][]string{
	model.OrderStatusPending: {model.OrderStatusCancelled},
}

// Estados finales
var finalStates = map[string]bool{
	model.OrderStatusCompleted: true,
	model.OrderStatusCancelled: true,
	model.OrderStatusExpired:   true,
}

var validStates = map[string]bool{
	model.OrderStatusPending:        true,
	model.OrderStatusInPreparation:  true,
	model.OrderStatusOutForDelivery: true,
	model.OrderStatusCompleted:      true,
	model.OrderStatusCancelled:      true,
	model.OrderStatusExpired:        true,
}

// Checkout convierte el carrito en un pedido persistido con status pending.
// El orden de validación importa: carrito vacío, cantidades, existencia de
// productos. Los precios salen del catálogo, nunca del cliente, y quedan
// congelados como snapshot en cada item. El stock NO se toca acá: se
// descuenta recién al confirmar el pedido.
func (s *OrderService) Checkout(ctx context.Context, userID string, req dto.CheckoutRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var items []model.OrderItem
	var totalProducts float64
	for _, it := range req.Items {
		prod, err := s.products.FindByRef(ctx, it.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		if err != nil {
			return nil, fmt.Errorf("consultando catálogo: %w", err)
		}

		lineTotal := round2(prod.Price * float64(it.Quantity))
		totalProducts += lineTotal

		items = append(items, model.OrderItem{
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			Note:      it.Note,
			UnitPrice: prod.Price,
			LineTotal: lineTotal,
			Product: model.ProductSnapshot{
				Name:     prod.Title,
				Image:    prod.Image,
				Category: prod.CategoryID,
			},
		})
	}

	// El id recién se asigna con el carrito ya validado y tasado; la
	// secuencia admite huecos pero nunca duplicados.
	orderID, err := s.seq.Next(ctx, repository.SequenceOrders)
	if err != nil {
		return nil, fmt.Errorf("asignando id de pedido: %w", err)
	}
	for i := range items {
		items[i].ItemID = fmt.Sprintf("item_%d_%d", orderID, i)
	}

	deliveryType := req.Delivery.Type
	if deliveryType != model.DeliveryExpress {
		deliveryType = model.DeliveryStandard
	}
	deliveryFee := 0.0
	if deliveryType == model.DeliveryExpress {
		deliveryFee = ExpressDeliveryFee
	}

	now := time.Now().UTC()
	order := &model.Order{
		OrderID:      orderID,
		UserID:       userID,
		Status:       model.OrderStatusPending,
		Items:        items,
		DeliveryType: deliveryType,
		DeliveryFee:  deliveryFee,
		Total:        round2(totalProducts + deliveryFee),
		Address: model.Address{
			Street:       req.Delivery.Address.Street,
			Number:       req.Delivery.Address.Number,
			Neighborhood: req.Delivery.Address.Neighborhood,
			City:         req.Delivery.Address.City,
			Region:       req.Delivery.Address.Region,
			PostalCode:   req.Delivery.Address.PostalCode,
			Complement:   req.Delivery.Address.Complement,
		},
		PaymentMethod: req.Payment.Method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("persistiendo pedido: %w", err)
	}

	if s.events != nil {
		if err := s.events.OrderPlaced(order); err != nil {
			log.Println("❌ Error publicando order_placed:", err)
		}
	}

	return order, nil
}

// GetOrder devuelve el pedido solo al dueño o a un admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, requesterID string, isAdmin bool) (*model.Order, error) {
	ord, err := s.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consultando pedido: %w", err)
	}
	if !isAdmin && ord.UserID != requesterID {
		return nil, ErrForbidden
	}
	return ord, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID string, page, pageSize int64) (*dto.OrderPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	orders, total, err := s.orders.FindByUserPage(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("listando pedidos: %w", err)
	}
	return buildPage(orders, total, page, pageSize), nil
}

// ListAllOrders es la misma operación sin filtro de dueño; el gate de admin
// vive en el middleware.
func (s *OrderService) ListAllOrders(ctx context.Context, page, pageSize int64) (*dto.OrderPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	orders, total, err := s.orders.FindAllPage(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("listando pedidos: %w", err)
	}
	return buildPage(orders, total, page, pageSize), nil
}

func (s *OrderService) OrderCounters(ctx context.Context) (map[string]int64, error) {
	return s.orders.CountByStatus(ctx)
}

// UpdateStatus valida y realiza la transición entre estados según las reglas
// de negocio. La entrada a in_preparation pasa por confirm, que además
// descuenta stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus, actorID string, isAdmin bool) error {
	ord, err := s.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("consultando pedido: %w", err)
	}

	current := ord.Status

	// Mismo estado: no hacemos nada
	if current == newStatus {
		return nil
	}
	if finalStates[current] {
		return ErrFinalState
	}
	if !validStates[newStatus] {
		return ErrInvalidTransition
	}

	isOwner := ord.UserID == actorID
	if !isAdmin && !isOwner {
		return ErrForbidden
	}

	allowedAsAdmin := isAdmin && contains(adminTransitions[current], newStatus)
	allowedAsOwner := isOwner && contains(userTransitions[current], newStatus)
	if !allowedAsAdmin && !allowedAsOwner {
		return ErrInvalidTransition
	}

	if newStatus == model.OrderStatusInPreparation {
		return s.confirm(ctx, ord)
	}

	moved, err := s.orders.UpdateStatusIf(ctx, orderID, current, newStatus)
	if err != nil {
		return fmt.Errorf("actualizando estado: %w", err)
	}
	if !moved {
		// Otro actor movió el pedido entre la lectura y el update.
		return ErrInvalidTransition
	}
	return nil
}

// ConfirmOrder avanza el pedido a in_preparation; lo invoca el motor de pagos
// cuando un pago queda en paid. Idempotente: si el pedido ya avanzó, no-op.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID int64) error {
	ord, err := s.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("consultando pedido: %w", err)
	}
	return s.confirm(ctx, ord)
}

// confirm hace la única transición con efectos sobre el stock. Primero mueve
// pending → in_preparation con update condicional (si no matchea, otro ya
// confirmó y no hay nada que hacer); después descuenta cada línea con el
// decremento atómico. Si una línea no alcanza, re-incrementa lo ya aplicado
// y devuelve el pedido a pending.
func (s *OrderService) confirm(ctx context.Context, ord *model.Order) error {
	moved, err := s.orders.UpdateStatusIf(ctx, ord.OrderID, model.OrderStatusPending, model.OrderStatusInPreparation)
	if err != nil {
		return fmt.Errorf("confirmando pedido: %w", err)
	}
	if !moved {
		return nil
	}

	var applied []model.OrderItem
	for _, it := range ord.Items {
		ref := model.ParseProductRef(it.ProductID)
		if _, err := s.products.AdjustStock(ctx, ref, -it.Quantity); err != nil {
			s.rollbackConfirm(ctx, ord.OrderID, applied)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return ErrInsufficientStock
			}
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductUnavailable
			}
			return fmt.Errorf("descontando stock: %w", err)
		}
		applied = append(applied, it)
	}
	return nil
}

func (s *OrderService) rollbackConfirm(ctx context.Context, orderID int64, applied []model.OrderItem) {
	for _, it := range applied {
		if _, err := s.products.AdjustStock(ctx, model.ParseProductRef(it.ProductID), it.Quantity); err != nil {
			log.Printf("❌ Error revirtiendo stock del pedido %d (producto %s): %v", orderID, it.ProductID, err)
		}
	}
	if _, err := s.orders.UpdateStatusIf(ctx, orderID, model.OrderStatusInPreparation, model.OrderStatusPending); err != nil {
		log.Printf("❌ Error devolviendo pedido %d a pending: %v", orderID, err)
	}
}

func normalizePage(page, pageSize int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func buildPage(orders []*model.Order, total, page, pageSize int64) *dto.OrderPage {
	totalPages := (total + pageSize - 1) / pageSize
	if orders == nil {
		orders = []*model.Order{}
	}
	return &dto.OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
