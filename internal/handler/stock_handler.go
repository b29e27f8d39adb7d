package handler

import (
	"net/http"
	"strconv"

	"warehouse/internal/middleware"
	"warehouse/internal/model"
	"warehouse/internal/repository"
	"warehouse/internal/service"
	"warehouse/pkg/pagination"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager, model.RoleSalesperson, model.RoleCashier)
	stockWrite := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager)

	router.GET("/api/products/:id/stock-update", stockWrite, h.StockUpdate)
	router.GET("/api/stock-movements", anyStaff, h.ListMovements)
}

// StockUpdate applies a manual stock adjustment to a product
// @Summary      Adjust stock
// @Description  Applies an Increase or Decrease to a product's stock and appends the movement to the ledger
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id          path      string  true  "Product ID"
// @Param        quantity    query     number  true  "Quantity to move (positive)"
// @Param        changeType  query     string  true  "Increase or Decrease"
// @Success      200         {object}  response.Response{data=object}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Failure      409         {object}  response.Response
// @Router       /api/products/{id}/stock-update [get]
func (h *StockHandler) StockUpdate(c *gin.Context) {
	quantity, err := strconv.ParseFloat(c.Query("quantity"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid quantity"))
		return
	}

	req := service.StockChangeRequest{
		StockChange: quantity,
		ChangeType:  c.Query("changeType"),
	}
	userID := c.GetString("userID")

	product, movement, err := h.stockService.ApplyStockChange(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"product":  product,
		"movement": movement,
	}))
}

// ListMovements returns the paginated stock ledger
// @Summary      List stock movements
// @Description  Retrieves the append-only stock movement history, newest first
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Number of items per page (default 20)"
// @Param        product_id    query     string  false  "Filter by product"
// @Param        user_id       query     string  false  "Filter by acting user"
// @Param        invoice_id    query     string  false  "Filter by invoice"
// @Param        movementType  query     string  false  "Increase or Decrease"
// @Success      200           {object}  response.Response{data=object}
// @Failure      400           {object}  response.Response
// @Router       /api/stock-movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	p := pagination.Parse(c)

	filter := repository.MovementFilter{
		MovementType: c.Query("movementType"),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid product_id"))
			return
		}
		filter.ProductID = &id
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user_id"))
			return
		}
		filter.UserID = &id
	}
	if raw := c.Query("invoice_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid invoice_id"))
			return
		}
		filter.InvoiceID = &id
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
		"page":      p.Page,
		"limit":     p.Limit,
	}))
}
