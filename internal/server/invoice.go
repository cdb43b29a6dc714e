package server

import (
	"net/http"
	"strings"
	"time"

	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/invoice/render"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createInvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type createInvoiceRequest struct {
	CustomerID string                     `json:"customer_id"`
	IssueDate  string                     `json:"issue_date"`
	DueDate    string                     `json:"due_date"`
	TaxRate    *decimal.Decimal           `json:"tax_rate"`
	Notes      string                     `json:"notes"`
	Items      []createInvoiceItemRequest `json:"items"`
}

type updateInvoiceRequest struct {
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
	PaymentNote *string `json:"payment_note"`
	DueDate     *string `json:"due_date"`
}

// @Summary      Create Invoice
// @Description  Create an invoice with an allocated sequential number
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body createInvoiceRequest true "Create Invoice Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices [post]
func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseOptionalTime(req.IssueDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date"))
		return
	}
	dueDate, err := parseOptionalTime(req.DueDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	create := invoicedomain.CreateInvoiceRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		TaxRate:    req.TaxRate,
		Notes:      req.Notes,
	}
	if issueDate != nil {
		create.IssueDate = *issueDate
	}
	if dueDate != nil {
		create.DueDate = *dueDate
	}
	for _, item := range req.Items {
		create.Items = append(create.Items, invoicedomain.CreateItemRequest{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "invoice.create", "invoice", resp.ID.String(), map[string]any{
		"number": resp.Number,
		"total":  resp.Total.StringFixed(2),
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Invoices
// @Description  List invoices filtered by status, customer or issue date
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Status"
// @Param        customer_id  query     string  false  "Customer ID"
// @Param        issued_from  query     string  false  "Issued From"
// @Param        issued_to    query     string  false  "Issued To"
// @Param        page_token   query     string  false  "Page Token"
// @Param        page_size    query     int     false  "Page Size"
// @Success      200  {object}  invoicedomain.ListInvoiceResponse
// @Router       /invoices [get]
func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
		IssuedFrom string `form:"issued_from"`
		IssuedTo   string `form:"issued_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issuedFrom, err := parseOptionalTime(query.IssuedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("issued_from", "invalid_issued_from", "invalid issued_from"))
		return
	}
	issuedTo, err := parseOptionalTime(query.IssuedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("issued_to", "invalid_issued_to", "invalid issued_to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Status:     strings.TrimSpace(query.Status),
		CustomerID: strings.TrimSpace(query.CustomerID),
		IssuedFrom: issuedFrom,
		IssuedTo:   issuedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Invoice
// @Description  Get invoice by ID with line items
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id} [get]
func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Invoice
// @Description  Change status and/or mutable fields of an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string                true  "Invoice ID"
// @Param        request body  updateInvoiceRequest  true  "Update Invoice Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id} [patch]
func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := invoicedomain.UpdateInvoiceRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Notes:       req.Notes,
		PaymentNote: req.PaymentNote,
	}
	if req.Status != nil {
		status, ok := invoicedomain.ParseStatus(*req.Status)
		if !ok {
			AbortWithError(c, invoicedomain.ErrInvalidStatus)
			return
		}
		update.Status = &status
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", strings.TrimSpace(*req.DueDate))
		if err != nil {
			AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
			return
		}
		dueDate = dueDate.UTC()
		update.DueDate = &dueDate
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "invoice.update", "invoice", resp.ID.String(), map[string]any{
		"number": resp.Number,
		"status": string(resp.Status),
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Invoice
// @Description  Delete an invoice that has not been paid
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  map[string]string
// @Router       /invoices/{id} [delete]
func (s *Server) DeleteInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "invoice.delete", "invoice", id, nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Invoice HTML
// @Description  Render a printable HTML view of an invoice
// @Tags         invoices
// @Produce      html
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {string}  string
// @Router       /invoices/{id}/html [get]
func (s *Server) RenderInvoiceHTML(c *gin.Context) {
	ctx := c.Request.Context()

	invoice, err := s.invoiceSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	customer, err := s.customerSvc.GetByID(ctx, invoice.CustomerID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	settings, err := s.tenantSvc.GetSettings(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	tenant, err := s.tenantSvc.GetByID(ctx, invoice.TenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.renderer.RenderHTML(render.BuildInput(invoice, customer, tenant, settings))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
