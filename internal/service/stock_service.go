package service

import (
	"context"
	"errors"
	"fmt"

	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/repository"
)

// StockService es el frente fino del libro de stock: valida cantidades y
// traduce errores; el trabajo atómico lo hace el repositorio.
type StockService struct {
	products ProductRepository
}

func NewStockService(products ProductRepository) *StockService {
	return &StockService{products: products}
}

func (s *StockService) AddStock(ctx context.Context, ref model.ProductRef, quantity int64) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.adjust(ctx, ref, quantity)
}

// RemoveStock falla sin mutar si la cantidad pedida supera el stock actual.
func (s *StockService) RemoveStock(ctx context.Context, ref model.ProductRef, quantity int64) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.adjust(ctx, ref, -quantity)
}

func (s *StockService) adjust(ctx context.Context, ref model.ProductRef, delta int64) (*model.Product, error) {
	prod, err := s.products.AdjustStock(ctx, ref, delta)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductUnavailable
	}
	if errors.Is(err, repository.ErrInsufficientStock) {
		return nil, ErrInsufficientStock
	}
	if err != nil {
		return nil, fmt.Errorf("ajustando stock: %w", err)
	}
	return prod, nil
}

// CheckAvailable es una lectura puntual sin reserva: sirve para la UI, no
// como garantía contra carreras. La garantía real es el decremento
// condicional del repositorio.
func (s *StockService) CheckAvailable(ctx context.Context, ref model.ProductRef, desired int64) (bool, error) {
	if desired <= 0 {
		return false, ErrInvalidQuantity
	}
	prod, err := s.products.FindByRef(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consultando producto: %w", err)
	}
	return prod.Quantity >= desired, nil
}

// MigrateStock inicializa quantity en productos anteriores al control de
// stock. Idempotente.
func (s *StockService) MigrateStock(ctx context.Context) (int64, error) {
	n, err := s.products.BackfillQuantity(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrando productos: %w", err)
	}
	return n, nil
}
