package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"theka/internal/csvexport"
	"theka/internal/domain"
	"theka/internal/service"
)

// exportPageSize bounds how many invoices one export iteration loads.
const exportPageSize = 200

// InvoiceHandler handles ICDC invoice endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Upload handles POST /api/v1/invoices/upload
// @Summary Upload an ICDC invoice PDF
// @Description Upload an ICDC stock receipt PDF (max 50MB). The invoice is queued for asynchronous parsing.
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "ICDC invoice PDF"
// @Success 201 {object} Response{data=domain.Invoice} "Invoice queued for parsing"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /invoices/upload [post]
func (h *InvoiceHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	inv, err := h.invoiceService.UploadICDC(c.Request.Context(), service.FileUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List ingested invoices with pagination, newest first
// @Tags invoices
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta} "List of invoices"
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Description Get one invoice with its parse status, header fields and financial totals
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Items handles GET /api/v1/invoices/:id/items
// @Summary List invoice line items
// @Description List the resolved product lines of a parsed invoice with their brand catalog matches
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=[]InvoiceItemWithMatch} "Line items"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id}/items [get]
func (h *InvoiceHandler) Items(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	items, err := h.invoiceService.ListItems(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, items)
}

// Diagnostics handles GET /api/v1/invoices/:id/diagnostics
// @Summary Get parse diagnostics
// @Description Re-run the extraction over the stored PDF with a per-line classification trace attached
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=InvoiceDiagnostics} "Parse trace"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 422 {object} ErrorResponseBody "Text extraction failed"
// @Router /invoices/{id}/diagnostics [get]
func (h *InvoiceHandler) Diagnostics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	res, err := h.invoiceService.Diagnostics(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// Export handles GET /api/v1/invoices/export
// @Summary Export invoices as CSV
// @Description Stream all invoices and their line items as a CSV download (one row per line item)
// @Tags invoices
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	filename := csvexport.BuildFilename("icdc invoices")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}

	for offset := 0; ; offset += exportPageSize {
		invoices, total, err := h.invoiceService.List(ctx, offset, exportPageSize)
		if err != nil {
			// Headers are already out; nothing sensible left to send.
			return
		}
		for i := range invoices {
			items, err := h.invoiceService.ListItems(ctx, invoices[i].ID)
			if err != nil {
				return
			}
			if err := w.WriteInvoice(&invoices[i], itemsOnly(items)); err != nil {
				return
			}
		}
		if offset+exportPageSize >= total {
			break
		}
	}

	w.Flush()
}

func itemsOnly(rows []service.InvoiceItemWithMatch) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, len(rows))
	for i := range rows {
		items[i] = rows[i].Item
	}
	return items
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
