package handler

import (
	"net/http"

	"warehouse/internal/middleware"
	"warehouse/internal/model"
	"warehouse/internal/repository"
	"warehouse/internal/service"
	"warehouse/pkg/pagination"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager, model.RoleSalesperson, model.RoleCashier)
	sales := middleware.RequireRole(model.RoleAdmin, model.RoleSalesperson, model.RoleCashier)
	cashier := middleware.RequireRole(model.RoleAdmin, model.RoleCashier)
	fulfilment := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager)

	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", anyStaff, h.ListInvoices)
		invoices.POST("", sales, h.CreateInvoice)
		invoices.GET("/:id", anyStaff, h.GetInvoice)
		invoices.PATCH("/:id", sales, h.UpdateInvoice)
		invoices.DELETE("/:id", cashier, h.DeleteInvoice)
		invoices.POST("/:id/pay", cashier, h.PayInvoice)
		invoices.POST("/:id/supply", fulfilment, h.SupplyInvoice)
	}
}

// ListInvoices returns paginated invoices
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, newest first
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Param        invoiceStatus  query     string  false  "Pending, Paid or Delivered"
// @Param        customer       query     string  false  "Filter by customer name (contains)"
// @Success      200            {object}  response.Response{data=object}
// @Failure      500            {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)

	filter := repository.InvoiceFilter{
		InvoiceStatus: c.Query("invoiceStatus"),
		CustomerName:  c.Query("customer"),
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// CreateInvoice creates an invoice with priced line items
// @Summary      Create invoice
// @Description  Creates an invoice; lines are priced at the products' current unit price and the number is allocated atomically
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// GetInvoice fetches one invoice with its line items
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateInvoice edits a Pending invoice
// @Summary      Update invoice
// @Description  Edits customer fields and line items; only Pending invoices may be edited, and replaced items are re-priced at current unit prices
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id} [patch]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice soft deletes an invoice
// @Summary      Delete invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Invoice deleted successfully"))
}

// PayInvoice marks a Pending invoice as Paid
// @Summary      Pay invoice
// @Description  Moves a Pending invoice to Paid and stamps date_paid
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/pay [post]
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Pay(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// SupplyInvoice fulfils a Paid invoice
// @Summary      Supply invoice
// @Description  Decreases stock for every line item and moves the invoice to Delivered, all in one transaction
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id}/supply [post]
func (h *InvoiceHandler) SupplyInvoice(c *gin.Context) {
	userID := c.GetString("userID")
	invoice, err := h.invoiceService.Supply(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
