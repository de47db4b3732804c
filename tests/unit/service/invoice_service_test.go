package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"theka/internal/domain"
	"theka/internal/icdc"
	"theka/internal/port"
	"theka/internal/service"
	"theka/mocks"
)

const fullInvoiceText = `TELANGANA STATE BEVERAGES CORPORATION LIMITED
ICDC NO : ICDC1012300456
INVOICE NO : 1000012345
DATE : 15-Jan-2025
DEPOT : SANGAREDDY
1 5016 MCDOWELLS NO1 WHISKY IML G 48 180 ML 1005
2 2277 KINGFISHER PREMIUM LAGER BEER G 12 650 ML 200
TOTAL (CASES/BOTTLES) : IML : 10/5 BEER : 20/0 TOTAL : 30/5
INVOICE VALUE : 100000.50
MRP ROUNDING OFF : 12.30
RETAIL EXCISE TURNOVER TAX : 2000.00
SPECIAL EXCISE CESS : 15000.00
TCS : 1182.99
TOTAL AMOUNT : 118195.79
PAGE 1 OF 1`

type invoiceServiceFixture struct {
	invoiceRepo *mocks.MockInvoiceRepo
	itemRepo    *mocks.MockInvoiceItemRepo
	matchRepo   *mocks.MockBrandMatchRepo
	fileSvc     *mocks.MockFileService
	catalogSvc  *mocks.MockCatalogService
	extractor   *mocks.MockTextExtractor
	storage     *mocks.MockObjectStorage
	notifier    *mocks.MockEmailSender
	svc         service.InvoiceService
}

func newInvoiceServiceFixture() *invoiceServiceFixture {
	f := &invoiceServiceFixture{
		invoiceRepo: new(mocks.MockInvoiceRepo),
		itemRepo:    new(mocks.MockInvoiceItemRepo),
		matchRepo:   new(mocks.MockBrandMatchRepo),
		fileSvc:     new(mocks.MockFileService),
		catalogSvc:  new(mocks.MockCatalogService),
		extractor:   new(mocks.MockTextExtractor),
		storage:     new(mocks.MockObjectStorage),
		notifier:    new(mocks.MockEmailSender),
	}
	f.svc = service.NewInvoiceService(
		f.invoiceRepo, f.itemRepo, f.matchRepo,
		f.fileSvc, f.catalogSvc, f.extractor, f.storage, f.notifier,
		icdc.DefaultSizeToleranceML,
	)
	return f
}

func testCatalog() *icdc.BrandCatalog {
	return icdc.NewBrandCatalog([]port.MasterBrandEntry{
		{ID: uuid.New(), BrandNumber: "5016", ProductName: "MCDOWELLS NO1 WHISKY", SizeML: 180, PackQuantity: 48, PackType: "G"},
		{ID: uuid.New(), BrandNumber: "2277", ProductName: "KINGFISHER PREMIUM LAGER", SizeML: 650, PackQuantity: 12, PackType: "G"},
	})
}

// expectDocumentLoad wires the download-and-extract path for one invoice.
func (f *invoiceServiceFixture) expectDocumentLoad(fileID uuid.UUID, text string) {
	meta := &domain.FileMeta{ID: fileID, S3Bucket: "test-bucket", S3Key: "icdc/x/doc.pdf"}
	f.fileSvc.On("GetByID", mock.Anything, fileID).Return(meta, nil)
	f.storage.On("Download", mock.Anything, "test-bucket", "icdc/x/doc.pdf").
		Return([]byte("%PDF-1.4"), nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractedText{Text: text, Pages: 1}, nil)
}

func TestInvoiceService_UploadICDC(t *testing.T) {
	f := newInvoiceServiceFixture()

	file, header := createMultipartFile("icdc.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	meta := &domain.FileMeta{ID: uuid.New(), OriginalName: "icdc.pdf"}
	f.fileSvc.On("Upload", mock.Anything, mock.AnythingOfType("service.FileUploadInput")).
		Return(meta, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.FileID == meta.ID && inv.ParseStatus == domain.ParseStatusQueued
	})).Return(nil)

	inv, err := f.svc.UploadICDC(context.Background(), service.FileUploadInput{File: file, Header: header})

	require.NoError(t, err)
	assert.Equal(t, domain.ParseStatusQueued, inv.ParseStatus)
	assert.Equal(t, meta.ID, inv.FileID)
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_ProcessInvoice_Success(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	f.expectDocumentLoad(inv.FileID, fullInvoiceText)
	f.catalogSvc.On("Snapshot", mock.Anything).Return(testCatalog(), nil)
	f.invoiceRepo.On("GetByICDCNumber", mock.Anything, "ICDC1012300456").
		Return(nil, domain.ErrNotFound)
	f.matchRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(items []domain.InvoiceItem) bool {
		return len(items) == 2 &&
			items[0].BrandNumber == "5016" && items[0].Cases == 10 && items[0].Bottles == 5 &&
			items[1].BrandNumber == "2277" && items[1].Cases == 20 && items[1].Bottles == 0
	})).Return(nil)
	f.matchRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(matches []domain.BrandMatchRow) bool {
		return len(matches) == 2 && matches[0].Method == "exact" && matches[0].MasterBrandID != nil
	})).Return(nil)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusParsed &&
			u.ICDCNumber == "ICDC1012300456" &&
			u.InvoiceNumber == "1000012345" &&
			u.InvoiceDate != nil &&
			u.SummaryMatched != nil && *u.SummaryMatched &&
			!u.NeedsReview
	})).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.invoiceRepo.AssertExpectations(t)
	f.itemRepo.AssertExpectations(t)
	f.matchRepo.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "SendReviewAlert")
}

func TestInvoiceService_ProcessInvoice_UnparsableDocument(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	f.expectDocumentLoad(inv.FileID, "GARBAGE TEXT WITH NO PRODUCT LINES")
	f.catalogSvc.On("Snapshot", mock.Anything).Return(testCatalog(), nil)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusFailed && u.NeedsReview
	})).Return(nil)
	f.notifier.On("SendReviewAlert", mock.Anything, mock.AnythingOfType("port.ReviewAlert")).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.invoiceRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.itemRepo.AssertNotCalled(t, "CreateBatch")
}

func TestInvoiceService_ProcessInvoice_EmptyCatalogStillParses(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	f.expectDocumentLoad(inv.FileID, fullInvoiceText)
	f.catalogSvc.On("Snapshot", mock.Anything).Return(nil, domain.ErrCatalogEmpty)
	f.invoiceRepo.On("GetByICDCNumber", mock.Anything, "ICDC1012300456").
		Return(nil, domain.ErrNotFound)
	f.matchRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.InvoiceItem")).Return(nil)
	f.matchRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(matches []domain.BrandMatchRow) bool {
		for _, m := range matches {
			if m.Method != "none" || m.MasterBrandID != nil {
				return false
			}
		}
		return len(matches) == 2
	})).Return(nil)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusParsed
	})).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.matchRepo.AssertExpectations(t)
}

func TestInvoiceService_ProcessInvoice_TransientErrorRequeues(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	meta := &domain.FileMeta{ID: inv.FileID, S3Bucket: "test-bucket", S3Key: "icdc/x/doc.pdf"}
	f.fileSvc.On("GetByID", mock.Anything, inv.FileID).Return(meta, nil)
	f.storage.On("Download", mock.Anything, "test-bucket", "icdc/x/doc.pdf").
		Return(nil, assert.AnError)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusQueued
	})).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_ProcessInvoice_ExtractionErrorFailsImmediately(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	meta := &domain.FileMeta{ID: inv.FileID, S3Bucket: "test-bucket", S3Key: "icdc/x/doc.pdf"}
	f.fileSvc.On("GetByID", mock.Anything, inv.FileID).Return(meta, nil)
	f.storage.On("Download", mock.Anything, "test-bucket", "icdc/x/doc.pdf").
		Return([]byte("%PDF-1.4"), nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(nil, domain.ErrTextExtraction)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusFailed
	})).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_ProcessInvoice_EmptyICDCNumberSkipsDuplicateCheck(t *testing.T) {
	f := newInvoiceServiceFixture()

	// ICDC header line missing entirely; the number stays empty and the
	// document must still parse. Empty numbers never collide, matching the
	// partial unique index on invoices.icdc_number.
	headerless := `1 5016 MCDOWELLS NO1 WHISKY IML G 48 180 ML 1005
2 2277 KINGFISHER PREMIUM LAGER BEER G 12 650 ML 200
TOTAL (CASES/BOTTLES) : IML : 10/5 BEER : 20/0 TOTAL : 30/5`

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	f.expectDocumentLoad(inv.FileID, headerless)
	f.catalogSvc.On("Snapshot", mock.Anything).Return(testCatalog(), nil)
	f.matchRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("DeleteByInvoice", mock.Anything, inv.ID).Return(nil)
	f.itemRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.InvoiceItem")).Return(nil)
	f.matchRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.BrandMatchRow")).Return(nil)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusParsed && u.ICDCNumber == ""
	})).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.invoiceRepo.AssertNotCalled(t, "GetByICDCNumber")
	f.invoiceRepo.AssertExpectations(t)
	f.itemRepo.AssertExpectations(t)
}

func TestInvoiceService_ProcessInvoice_DuplicateICDCFails(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New(), ParseStatus: domain.ParseStatusProcessing, ParseAttempts: 1}
	existing := &domain.Invoice{ID: uuid.New(), ICDCNumber: "ICDC1012300456"}
	f.expectDocumentLoad(inv.FileID, fullInvoiceText)
	f.catalogSvc.On("Snapshot", mock.Anything).Return(testCatalog(), nil)
	f.invoiceRepo.On("GetByICDCNumber", mock.Anything, "ICDC1012300456").Return(existing, nil)
	f.invoiceRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(u *domain.Invoice) bool {
		return u.ParseStatus == domain.ParseStatusFailed
	})).Return(nil)

	f.svc.ProcessInvoice(context.Background(), inv, 3)

	f.itemRepo.AssertNotCalled(t, "CreateBatch")
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_ListItems_JoinsMatches(t *testing.T) {
	f := newInvoiceServiceFixture()

	invID := uuid.New()
	itemID := uuid.New()
	otherItemID := uuid.New()
	f.invoiceRepo.On("GetByID", mock.Anything, invID).
		Return(&domain.Invoice{ID: invID}, nil)
	f.itemRepo.On("ListByInvoice", mock.Anything, invID).Return([]domain.InvoiceItem{
		{ID: itemID, Serial: 1},
		{ID: otherItemID, Serial: 2},
	}, nil)
	f.matchRepo.On("ListByInvoice", mock.Anything, invID).Return([]domain.BrandMatchRow{
		{InvoiceItemID: itemID, Method: "exact", Confidence: 100},
	}, nil)

	rows, err := f.svc.ListItems(context.Background(), invID)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Match)
	assert.Equal(t, "exact", rows[0].Match.Method)
	assert.Nil(t, rows[1].Match)
}

func TestInvoiceService_ListItems_InvoiceNotFound(t *testing.T) {
	f := newInvoiceServiceFixture()

	invID := uuid.New()
	f.invoiceRepo.On("GetByID", mock.Anything, invID).Return(nil, domain.ErrNotFound)

	_, err := f.svc.ListItems(context.Background(), invID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.itemRepo.AssertNotCalled(t, "ListByInvoice")
}

func TestInvoiceService_Diagnostics_AttachesTrace(t *testing.T) {
	f := newInvoiceServiceFixture()

	inv := &domain.Invoice{ID: uuid.New(), FileID: uuid.New()}
	f.invoiceRepo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	f.expectDocumentLoad(inv.FileID, fullInvoiceText)
	f.catalogSvc.On("Snapshot", mock.Anything).Return(testCatalog(), nil)

	res, err := f.svc.Diagnostics(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Trace)
}
