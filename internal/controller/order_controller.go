package controller

import (
	"net/http"
	"strconv"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderService
}

func NewOrderController(s *service.OrderService) *OrderController {
	return &OrderController{Service: s}
}

// POST /orders — checkout del carrito
func (ctl *OrderController) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	order, err := ctl.Service.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GET /orders/:orderId — solo el dueño o un admin
func (ctl *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := ctl.Service.GetOrder(
		c.Request.Context(),
		orderID,
		c.GetString("userID"),
		c.GetBool("isAdmin"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GET /orders?page=&pageSize= — pedidos del usuario autenticado
func (ctl *OrderController) ListMyOrders(c *gin.Context) {
	page, pageSize := parsePagination(c)
	res, err := ctl.Service.ListUserOrders(c.Request.Context(), c.GetString("userID"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /orders/admin — todos los pedidos (middleware AdminOnly)
func (ctl *OrderController) ListAllOrders(c *gin.Context) {
	page, pageSize := parsePagination(c)
	res, err := ctl.Service.ListAllOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /orders/admin/counters — contadores por estado (middleware AdminOnly)
func (ctl *OrderController) OrderCounters(c *gin.Context) {
	counters, err := ctl.Service.OrderCounters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counters)
}

// PATCH /orders/:orderId/status — las tablas de transición deciden quién puede qué
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.Service.UpdateStatus(
		c.Request.Context(),
		orderID,
		req.Status,
		c.GetString("userID"),
		c.GetBool("isAdmin"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId inválido"})
		return 0, false
	}
	return orderID, true
}

func parsePagination(c *gin.Context) (int64, int64) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("pageSize", "10"), 10, 64)
	return page, pageSize
}
