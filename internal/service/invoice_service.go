package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"theka/internal/domain"
	"theka/internal/icdc"
	"theka/internal/port"
)

// invoiceDateLayouts covers the date spellings seen across ICDC print runs.
var invoiceDateLayouts = []string{
	"02-Jan-2006",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"02-Jan-06",
}

// InvoiceItemWithMatch pairs a persisted line item with its brand match.
type InvoiceItemWithMatch struct {
	Item  domain.InvoiceItem    `json:"item"`
	Match *domain.BrandMatchRow `json:"match,omitempty"`
}

// InvoiceService defines the ICDC ingestion contract: upload, queued
// parsing, and read access to parse outcomes.
type InvoiceService interface {
	UploadICDC(ctx context.Context, input FileUploadInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceItemWithMatch, error)
	// Diagnostics re-runs the extraction core over the stored PDF with the
	// per-line trace attached. Parsing is deterministic, so the trace always
	// describes the persisted outcome.
	Diagnostics(ctx context.Context, invoiceID uuid.UUID) (*icdc.ParseResult, error)
	// ProcessInvoice runs the full pipeline over one claimed invoice:
	// download, text-extract, parse against a fresh catalog snapshot,
	// persist. Never returns an error; failures land on the invoice row.
	ProcessInvoice(ctx context.Context, inv *domain.Invoice, maxAttempts int)
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	itemRepo    port.InvoiceItemRepository
	matchRepo   port.BrandMatchRepository
	fileService FileService
	catalog     CatalogService
	extractor   port.TextExtractor
	storage     port.ObjectStorage
	notifier    port.EmailSender
	tolerance   int
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	itemRepo port.InvoiceItemRepository,
	matchRepo port.BrandMatchRepository,
	fileService FileService,
	catalog CatalogService,
	extractor port.TextExtractor,
	storage port.ObjectStorage,
	notifier port.EmailSender,
	sizeToleranceML int,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		matchRepo:   matchRepo,
		fileService: fileService,
		catalog:     catalog,
		extractor:   extractor,
		storage:     storage,
		notifier:    notifier,
		tolerance:   sizeToleranceML,
	}
}

func (s *invoiceService) UploadICDC(ctx context.Context, input FileUploadInput) (*domain.Invoice, error) {
	meta, err := s.fileService.Upload(ctx, input)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ID:          uuid.New(),
		FileID:      meta.ID,
		ParseStatus: domain.ParseStatusQueued,
		Warnings:    json.RawMessage("[]"),
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice record: %w", err)
	}

	log.Printf("invoiceService.UploadICDC: invoice %s queued for file %s (%s)",
		inv.ID, meta.ID, meta.OriginalName)
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, offset, limit)
}

func (s *invoiceService) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceItemWithMatch, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	byItem := make(map[uuid.UUID]*domain.BrandMatchRow, len(matches))
	for i := range matches {
		byItem[matches[i].InvoiceItemID] = &matches[i]
	}

	out := make([]InvoiceItemWithMatch, len(items))
	for i := range items {
		out[i] = InvoiceItemWithMatch{Item: items[i], Match: byItem[items[i].ID]}
	}
	return out, nil
}

func (s *invoiceService) Diagnostics(ctx context.Context, invoiceID uuid.UUID) (*icdc.ParseResult, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, inv)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return icdc.ParseInvoice(doc, catalog,
		icdc.WithSizeTolerance(s.tolerance), icdc.WithTrace()), nil
}

// loadDocument downloads the invoice's PDF and extracts its text.
func (s *invoiceService) loadDocument(ctx context.Context, inv *domain.Invoice) (*icdc.RawDocument, error) {
	meta, err := s.fileService.GetByID(ctx, inv.FileID)
	if err != nil {
		return nil, fmt.Errorf("looking up file: %w", err)
	}
	pdfBytes, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	extracted, err := s.extractor.Extract(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}
	return icdc.NewRawDocument(pdfBytes, extracted.Text, extracted.Pages), nil
}

func (s *invoiceService) ProcessInvoice(ctx context.Context, inv *domain.Invoice, maxAttempts int) {
	doc, err := s.loadDocument(ctx, inv)
	if err != nil {
		s.handleProcessError(ctx, inv, err, maxAttempts)
		return
	}

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		// An empty catalog still resolves every line to method "none";
		// lines stay linkable once the catalog is seeded.
		if !errors.Is(err, domain.ErrCatalogEmpty) {
			s.handleProcessError(ctx, inv, err, maxAttempts)
			return
		}
		log.Printf("invoiceService.ProcessInvoice: catalog empty, invoice %s resolves without brand matches", inv.ID)
		catalog = icdc.NewBrandCatalog(nil)
	}

	res := icdc.ParseInvoice(doc, catalog, icdc.WithSizeTolerance(s.tolerance))
	if !res.Success {
		s.failParsing(ctx, inv, domain.ErrDocumentUnparsed.Error(), res.Warnings)
		s.notifyReview(ctx, inv, res, "document could not be parsed")
		return
	}

	// The same ICDC arriving twice is a re-upload, not a new receipt.
	// Documents whose ICDC header line never classified keep an empty
	// number and are allowed to coexist, mirroring the partial unique
	// index on invoices.icdc_number.
	if res.ICDCNumber != "" {
		if existing, err := s.invoiceRepo.GetByICDCNumber(ctx, res.ICDCNumber); err == nil && existing.ID != inv.ID {
			s.failParsing(ctx, inv, fmt.Sprintf("%v: %s already ingested as invoice %s",
				domain.ErrDuplicateICDC, res.ICDCNumber, existing.ID), res.Warnings)
			return
		}
	}

	if err := s.persistResult(ctx, inv, doc, res); err != nil {
		log.Printf("invoiceService.ProcessInvoice: failed to save results for %s: %v", inv.ID, err)
		return
	}

	log.Printf("invoiceService.ProcessInvoice: invoice %s parsed (%d items, %d warnings)",
		inv.ID, len(res.Items), len(res.Warnings))

	if inv.NeedsReview {
		s.notifyReview(ctx, inv, res, "lines resolved with fallback quantities")
	}
}

func (s *invoiceService) persistResult(ctx context.Context, inv *domain.Invoice, doc *icdc.RawDocument, res *icdc.ParseResult) error {
	now := time.Now().UTC()

	items := make([]domain.InvoiceItem, len(res.Items))
	matches := make([]domain.BrandMatchRow, len(res.Items))
	needsReview := false
	for i := range res.Items {
		it := &res.Items[i]
		if it.NeedsReview {
			needsReview = true
		}
		items[i] = domain.InvoiceItem{
			ID:                   uuid.New(),
			InvoiceID:            inv.ID,
			Serial:               it.Serial,
			BrandNumber:          it.BrandNumber,
			ProductName:          it.ProductName,
			ProductCategory:      string(it.ProductCategory),
			PackType:             string(it.PackType),
			PackQuantity:         it.PackQuantity,
			SizeML:               it.SizeML,
			QuantityToken:        it.QuantityToken,
			Cases:                it.Cases,
			Bottles:              it.Bottles,
			TotalUnits:           it.TotalUnits,
			ResolutionMethod:     string(it.ResolutionMethod),
			ResolutionConfidence: it.ResolutionConfidence,
			SourceLine:           it.SourceLine,
		}
		matches[i] = domain.BrandMatchRow{
			ID:            uuid.New(),
			InvoiceID:     inv.ID,
			InvoiceItemID: items[i].ID,
			Confidence:    it.Brand.Confidence,
			Method:        string(it.Brand.Method),
		}
		if it.Brand.MasterBrand != nil {
			id := it.Brand.MasterBrand.ID
			matches[i].MasterBrandID = &id
		}
	}

	// Reprocessing replaces earlier rows; matches are never retried in place.
	if err := s.matchRepo.DeleteByInvoice(ctx, inv.ID); err != nil {
		return err
	}
	if err := s.itemRepo.DeleteByInvoice(ctx, inv.ID); err != nil {
		return err
	}
	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return err
	}
	if err := s.matchRepo.CreateBatch(ctx, matches); err != nil {
		return err
	}

	warnings, _ := json.Marshal(res.Warnings)
	if warnings == nil {
		warnings = json.RawMessage("[]")
	}

	inv.ICDCNumber = res.ICDCNumber
	inv.InvoiceNumber = res.InvoiceNumber
	inv.InvoiceDate = parseInvoiceDate(res.InvoiceDate)
	inv.PageCount = doc.Pages
	inv.InvoiceValue = res.Financial.InvoiceValue
	inv.MRPRoundingOff = res.Financial.MRPRoundingOff
	inv.RetailExciseTurnoverTax = res.Financial.RetailExciseTurnoverTax
	inv.SpecialExciseCess = res.Financial.SpecialExciseCess
	inv.TCS = res.Financial.TCS
	inv.TotalAmount = res.Financial.TotalAmount
	if res.SummaryValidation != nil {
		matched := res.SummaryValidation.Matched
		inv.SummaryMatched = &matched
	}
	inv.Warnings = warnings
	inv.NeedsReview = needsReview
	inv.ParseStatus = domain.ParseStatusParsed
	inv.ParseError = ""
	inv.ParsedAt = &now

	return s.invoiceRepo.UpdateParseResult(ctx, inv)
}

// handleProcessError requeues the invoice on transient infrastructure
// failures while attempts remain; otherwise marks it failed.
func (s *invoiceService) handleProcessError(ctx context.Context, inv *domain.Invoice, err error, maxAttempts int) {
	if inv.ParseAttempts < maxAttempts && !errors.Is(err, domain.ErrTextExtraction) {
		inv.ParseStatus = domain.ParseStatusQueued
		inv.ParseError = fmt.Sprintf("attempt %d: %v", inv.ParseAttempts, err)
		if uerr := s.invoiceRepo.UpdateParseResult(ctx, inv); uerr != nil {
			log.Printf("invoiceService.handleProcessError: failed to requeue invoice %s: %v", inv.ID, uerr)
			return
		}
		log.Printf("invoiceService.handleProcessError: invoice %s requeued after attempt %d: %v",
			inv.ID, inv.ParseAttempts, err)
		return
	}
	s.failParsing(ctx, inv, err.Error(), nil)
}

func (s *invoiceService) failParsing(ctx context.Context, inv *domain.Invoice, errMsg string, warnings []string) {
	log.Printf("invoiceService.failParsing: invoice %s failed: %s", inv.ID, errMsg)
	inv.ParseStatus = domain.ParseStatusFailed
	inv.ParseError = errMsg
	inv.NeedsReview = true
	if w, err := json.Marshal(warnings); err == nil && warnings != nil {
		inv.Warnings = w
	}
	if err := s.invoiceRepo.UpdateParseResult(ctx, inv); err != nil {
		log.Printf("invoiceService.failParsing: failed to update status for %s: %v", inv.ID, err)
	}
}

// notifyReview sends one review alert per processed document. Notification
// failures are logged, never propagated.
func (s *invoiceService) notifyReview(ctx context.Context, inv *domain.Invoice, res *icdc.ParseResult, reason string) {
	if s.notifier == nil {
		return
	}
	var flagged []string
	for i := range res.Items {
		if res.Items[i].NeedsReview {
			flagged = append(flagged, strconv.Itoa(res.Items[i].Serial))
		}
	}
	alert := port.ReviewAlert{
		ICDCNumber:     res.ICDCNumber,
		InvoiceID:      inv.ID.String(),
		Reason:         reason,
		FlaggedSerials: flagged,
		Warnings:       res.Warnings,
	}
	if err := s.notifier.SendReviewAlert(ctx, alert); err != nil {
		log.Printf("invoiceService.notifyReview: failed to send alert for %s: %v", inv.ID, err)
	}
}

// parseInvoiceDate tries each known date layout; nil when none fit.
func parseInvoiceDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
