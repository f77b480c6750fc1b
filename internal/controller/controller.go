package controller

import (
	"errors"
	"log"
	"net/http"

	"kaiserhaus-checkout-service/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError traduce los errores de negocio a HTTP. Todo lo que no sea un
// error tipado del servicio es un 500: se loguea la causa y al cliente le
// llega un mensaje genérico, nunca el detalle interno.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrInvalidCardNumber),
		errors.Is(err, service.ErrInvalidCardHolder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "no tenés permiso para esta operación"})

	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrFinalState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		log.Println("❌ Error interno:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error interno del servidor"})
	}
}
