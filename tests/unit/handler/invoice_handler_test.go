package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"theka/internal/domain"
	"theka/internal/handler"
	"theka/internal/service"
	"theka/mocks"
)

func newInvoiceHandler() (*handler.InvoiceHandler, *mocks.MockInvoiceService) {
	mockSvc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockSvc)
	return h, mockSvc
}

// multipartPDF builds a multipart body with one "file" part holding PDF bytes.
func multipartPDF(filename string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte("%PDF-1.4 test content"))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestInvoiceHandler_Upload_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	expected := &domain.Invoice{
		ID:          uuid.New(),
		FileID:      uuid.New(),
		ParseStatus: domain.ParseStatusQueued,
	}
	mockSvc.On("UploadICDC", mock.Anything, mock.AnythingOfType("service.FileUploadInput")).
		Return(expected, nil)

	body, contentType := multipartPDF("icdc.pdf")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/invoices/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_Upload_NoFile(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/invoices/upload", http.NoBody)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "UploadICDC")
}

func TestInvoiceHandler_Upload_UnsupportedType(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	mockSvc.On("UploadICDC", mock.Anything, mock.Anything).
		Return(nil, domain.ErrUnsupportedFileType)

	body, contentType := multipartPDF("notes.txt")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/invoices/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestInvoiceHandler_Upload_TooLarge(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	mockSvc.On("UploadICDC", mock.Anything, mock.Anything).
		Return(nil, domain.ErrFileTooLarge)

	body, contentType := multipartPDF("huge.pdf")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/invoices/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestInvoiceHandler_List_Defaults(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	mockSvc.On("List", mock.Anything, 0, 20).
		Return([]domain.Invoice{{ID: uuid.New()}}, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_List_ClampsLimit(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	// Limits over 100 fall back to the default page size.
	mockSvc.On("List", mock.Anything, 5, 20).
		Return([]domain.Invoice{}, 0, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices?offset=5&limit=5000", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_GetByID_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).
		Return(&domain.Invoice{ID: id, ICDCNumber: "ICDC1012300456"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ICDC1012300456")
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "GetByID")
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Items_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	id := uuid.New()
	rows := []service.InvoiceItemWithMatch{
		{
			Item:  domain.InvoiceItem{ID: uuid.New(), Serial: 1, BrandNumber: "5016"},
			Match: &domain.BrandMatchRow{Method: "exact", Confidence: 100},
		},
	}
	mockSvc.On("ListItems", mock.Anything, id).Return(rows, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String()+"/items", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Items(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"5016"`)
	assert.Contains(t, w.Body.String(), `"exact"`)
}

func TestInvoiceHandler_Diagnostics_ExtractionFailure(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	id := uuid.New()
	mockSvc.On("Diagnostics", mock.Anything, id).Return(nil, domain.ErrTextExtraction)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String()+"/diagnostics", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Diagnostics(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInvoiceHandler_Export_StreamsCSV(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	parsedAt := time.Date(2025, 1, 16, 10, 30, 0, 0, time.UTC)
	invDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	value := 118195.79
	inv := domain.Invoice{
		ID:            uuid.New(),
		ICDCNumber:    "ICDC1012300456",
		InvoiceNumber: "1000012345",
		InvoiceDate:   &invDate,
		ParseStatus:   domain.ParseStatusParsed,
		TotalAmount:   &value,
		ParsedAt:      &parsedAt,
	}
	rows := []service.InvoiceItemWithMatch{
		{Item: domain.InvoiceItem{
			InvoiceID: inv.ID, Serial: 1, BrandNumber: "5016",
			ProductName: "MCDOWELLS NO1 WHISKY", Cases: 10, Bottles: 5, TotalUnits: 485,
			ResolutionMethod: "summary-exact", ResolutionConfidence: 1.0,
		}},
		{Item: domain.InvoiceItem{
			InvoiceID: inv.ID, Serial: 2, BrandNumber: "2277",
			ProductName: "KINGFISHER PREMIUM LAGER", Cases: 20, Bottles: 0, TotalUnits: 240,
			ResolutionMethod: "summary-exact", ResolutionConfidence: 1.0,
		}},
	}

	mockSvc.On("List", mock.Anything, 0, mock.AnythingOfType("int")).
		Return([]domain.Invoice{inv}, 1, nil)
	mockSvc.On("ListItems", mock.Anything, inv.ID).Return(rows, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/export", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	// UTF-8 BOM keeps Excel from mangling the encoding.
	assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))

	csvText := string(body[3:])
	lines := strings.Split(strings.TrimSpace(csvText), "\n")
	require.Len(t, lines, 3) // header + one row per item
	assert.Contains(t, lines[0], "ICDC Number")
	assert.Contains(t, lines[1], "ICDC1012300456")
	assert.Contains(t, lines[1], "MCDOWELLS NO1 WHISKY")
	assert.Contains(t, lines[1], "summary-exact")
	assert.Contains(t, lines[1], "118195.79")
	assert.Contains(t, lines[2], "KINGFISHER PREMIUM LAGER")
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_Export_InvoiceWithoutItems(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	inv := domain.Invoice{ID: uuid.New(), ParseStatus: domain.ParseStatusFailed}
	mockSvc.On("List", mock.Anything, 0, mock.AnythingOfType("int")).
		Return([]domain.Invoice{inv}, 1, nil)
	mockSvc.On("ListItems", mock.Anything, inv.ID).
		Return([]service.InvoiceItemWithMatch{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/invoices/export", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	// Unparsed invoices still export one metadata-only row.
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "failed")
}
