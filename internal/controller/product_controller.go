package controller

import (
	"errors"
	"net/http"
	"strconv"

	"kaiserhaus-checkout-service/internal/dto"
	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductController expone solo las operaciones de stock; el CRUD del
// catálogo vive en otro servicio.
type ProductController struct {
	Service *service.StockService
}

func NewProductController(s *service.StockService) *ProductController {
	return &ProductController{Service: s}
}

// PATCH /products/:productId/stock — admin/interno
func (ctl *ProductController) AdjustStock(c *gin.Context) {
	var req dto.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref := model.ParseProductRef(c.Param("productId"))

	var prod *model.Product
	var err error
	if req.Op == "add" {
		prod, err = ctl.Service.AddStock(c.Request.Context(), ref, req.Quantity)
	} else {
		prod, err = ctl.Service.RemoveStock(c.Request.Context(), ref, req.Quantity)
	}
	if err != nil {
		// Producto inexistente y stock corto responden 404 por igual.
		if errors.Is(err, service.ErrInsufficientStock) || errors.Is(err, service.ErrProductUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prod)
}

// GET /products/:productId/stock?quantity= — sondeo sin reserva
func (ctl *ProductController) CheckStock(c *gin.Context) {
	desired, err := strconv.ParseInt(c.DefaultQuery("quantity", "1"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity inválida"})
		return
	}

	ref := model.ParseProductRef(c.Param("productId"))
	available, err := ctl.Service.CheckAvailable(c.Request.Context(), ref, desired)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"productId": ref.String(),
		"quantity":  desired,
		"available": available,
	})
}

// POST /products/migrate-stock — backfill de quantity, re-ejecutable
func (ctl *ProductController) MigrateStock(c *gin.Context) {
	migrated, err := ctl.Service.MigrateStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "migración completada",
		"migrated": migrated,
	})
}
