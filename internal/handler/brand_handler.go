package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"theka/internal/service"
)

// BrandHandler handles master brand catalog endpoints.
type BrandHandler struct {
	catalogService service.CatalogService
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(catalogService service.CatalogService) *BrandHandler {
	return &BrandHandler{catalogService: catalogService}
}

// ImportCSV handles POST /api/v1/brands/import
// @Summary Import the master brand catalog
// @Description Upsert catalog rows from a TGBCL master brand CSV. Natural key is (brand number, size, pack quantity, pack type).
// @Tags brands
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Master brand CSV"
// @Success 200 {object} Response{data=ImportStatsResponse} "Import summary"
// @Failure 400 {object} ErrorResponseBody "Missing file or malformed CSV"
// @Router /brands/import [post]
func (h *BrandHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	stats, err := h.catalogService.ImportCSV(c.Request.Context(), file)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}

// List handles GET /api/v1/brands
// @Summary Search the brand catalog
// @Description List catalog rows, optionally filtered by brand number or product name substring
// @Tags brands
// @Produce json
// @Param q query string false "Brand number or product name filter"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]port.MasterBrandEntry,meta=PagMeta} "Catalog rows"
// @Router /brands [get]
func (h *BrandHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	query := c.Query("q")

	brands, total, err := h.catalogService.Search(c.Request.Context(), query, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, brands, PagMeta{Total: total, Offset: offset, Limit: limit})
}
