package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/repository"
	"kaiserhaus-checkout-service/internal/vault"
)

// CardService guarda tarjetas para el flujo de pago. El PAN y el CVV se
// sellan antes de persistir y nunca vuelven a salir por la API; afuera solo
// viajan los últimos cuatro dígitos.
type CardService struct {
	cards  CardRepository
	sealer vault.Sealer
}

func NewCardService(cards CardRepository, sealer vault.Sealer) *CardService {
	return &CardService{cards: cards, sealer: sealer}
}

func (s *CardService) CreateCard(ctx context.Context, userID string, req dto.CreateCardRequest) (*model.Card, error) {
	number := digitsOnly(req.Number)
	if !luhnValid(number) {
		return nil, ErrInvalidCardNumber
	}
	if len(strings.TrimSpace(req.HolderName)) < 2 {
		return nil, ErrInvalidCardHolder
	}

	sealedNumber, err := s.sealer.Seal(number)
	if err != nil {
		return nil, fmt.Errorf("sellando número de tarjeta: %w", err)
	}
	sealedCVV, err := s.sealer.Seal(req.CVV)
	if err != nil {
		return nil, fmt.Errorf("sellando cvv: %w", err)
	}

	card := &model.Card{
		UserID:       userID,
		HolderName:   strings.TrimSpace(req.HolderName),
		SealedNumber: sealedNumber,
		SealedCVV:    sealedCVV,
		Last4:        number[len(number)-4:],
		Month:        req.Month,
		Year:         req.Year,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.cards.Insert(ctx, card); err != nil {
		return nil, fmt.Errorf("persistiendo tarjeta: %w", err)
	}
	return card, nil
}

func (s *CardService) GetCard(ctx context.Context, cardID, userID string) (*model.Card, error) {
	card, err := s.cards.FindByID(ctx, cardID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consultando tarjeta: %w", err)
	}
	return card, nil
}

func (s *CardService) ListCards(ctx context.Context, userID string) ([]*model.Card, error) {
	cards, err := s.cards.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listando tarjetas: %w", err)
	}
	return cards, nil
}

func (s *CardService) DeleteCard(ctx context.Context, cardID, userID string) error {
	err := s.cards.Delete(ctx, cardID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCardNotFound
	}
	if err != nil {
		return fmt.Errorf("borrando tarjeta: %w", err)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// luhnValid aplica el algoritmo de Luhn sobre 13 a 19 dígitos.
func luhnValid(number string) bool {
	if len(number) < 13 || len(number) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
