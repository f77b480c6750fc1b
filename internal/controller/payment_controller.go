package controller

import (
	"net/http"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Service *service.PaymentService
}

func NewPaymentController(s *service.PaymentService) *PaymentController {
	return &PaymentController{Service: s}
}

// POST /payments/pix — crea el pago pix pendiente
func (ctl *PaymentController) CreatePixPayment(c *gin.Context) {
	var req dto.PixPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.CreatePixPayment(c.Request.Context(), req.OrderID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// POST /payments/pix/webhook — público: lo llama el proveedor externo.
// Una entrega repetida o tardía no es un bug: si no hay pago pendiente que
// matchee, devolvemos 404 sin tocar nada.
func (ctl *PaymentController) PixWebhook(c *gin.Context) {
	var req dto.PixWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	processed, err := ctl.Service.ProcessPixWebhook(c.Request.Context(), req.OrderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	if !processed {
		c.JSON(http.StatusNotFound, gin.H{"error": "no hay pago pendiente para ese pedido"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "webhook procesado", "status": req.Status})
}

// POST /payments/card — flujo síncrono simulado
func (ctl *PaymentController) CreateCardPayment(c *gin.Context) {
	var req dto.CardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.CreateCardPayment(c.Request.Context(), c.GetString("userID"), req.OrderID, req.CardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GET /payments/order/:orderId — último pago del pedido, o null
func (ctl *PaymentController) GetPaymentForOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	payment, err := ctl.Service.GetPaymentForOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
