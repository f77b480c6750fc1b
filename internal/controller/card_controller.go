package controller

import (
	"net/http"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CardController struct {
	Service *service.CardService
}

func NewCardController(s *service.CardService) *CardController {
	return &CardController{Service: s}
}

// POST /cards
func (ctl *CardController) CreateCard(c *gin.Context) {
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := ctl.Service.CreateCard(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCardResponse(card))
}

// GET /cards — tarjetas del usuario autenticado
func (ctl *CardController) ListCards(c *gin.Context) {
	cards, err := ctl.Service.ListCards(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.CardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toCardResponse(card))
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /cards/:cardId — solo el dueño
func (ctl *CardController) DeleteCard(c *gin.Context) {
	err := ctl.Service.DeleteCard(c.Request.Context(), c.Param("cardId"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tarjeta eliminada"})
}

func toCardResponse(card *model.Card) dto.CardResponse {
	return dto.CardResponse{
		ID:         card.ID.Hex(),
		Last4:      card.Last4,
		HolderName: card.HolderName,
		Month:      card.Month,
		Year:       card.Year,
		CreatedAt:  card.CreatedAt,
	}
}
