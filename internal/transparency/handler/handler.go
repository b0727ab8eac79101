package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	ledgermodels "medfund/internal/ledger/models"
	"medfund/internal/transparency/models"
	"medfund/internal/transparency/service"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/platform/httputil"
	"medfund/pkg/requestcontext"
)

// Service defines the transparency operations the handler needs.
type Service interface {
	AddCaseUpdate(ctx context.Context, in service.AddUpdateInput) (*models.CaseUpdate, error)
	ListUpdates(ctx context.Context, caseID domain.CaseID) ([]*models.CaseUpdate, error)
	AddInvoice(ctx context.Context, in service.AddInvoiceInput) (*models.Invoice, error)
	AdvanceInvoiceStatus(ctx context.Context, id domain.InvoiceID, next domain.InvoiceStatus) (*models.Invoice, error)
	ListInvoices(ctx context.Context, caseID domain.CaseID) ([]*models.Invoice, error)
	GetCaseLedger(ctx context.Context, caseID domain.CaseID) (*service.CaseLedger, error)
}

// Handler wires transparency routes to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
	admin   func(http.Handler) http.Handler
}

// New creates a transparency Handler. admin guards invoice mutation.
func New(service Service, logger *slog.Logger, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, admin: admin}
}

// Register mounts the transparency routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases/{caseID}/updates", h.handleAddUpdate)
	r.Get("/cases/{caseID}/updates", h.handleListUpdates)
	r.Get("/cases/{caseID}/invoices", h.handleListInvoices)
	r.Get("/cases/{caseID}/ledger", h.handleGetLedger)

	r.Group(func(r chi.Router) {
		r.Use(h.admin)
		r.Post("/cases/{caseID}/invoices", h.handleAddInvoice)
		r.Patch("/invoices/{invoiceID}/status", h.handleAdvanceInvoice)
	})
}

type addUpdateRequest struct {
	AuthorID   string `json:"author_id"`
	AuthorType string `json:"author_type"`
	UpdateType string `json:"update_type"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

func (h *Handler) handleAddUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req addUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	// Enum validation happens in the domain constructor.
	u, err := h.service.AddCaseUpdate(ctx, service.AddUpdateInput{
		CaseID:     caseID,
		AuthorID:   req.AuthorID,
		AuthorType: domain.AuthorType(req.AuthorType),
		UpdateType: domain.UpdateType(req.UpdateType),
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		h.logFailure(ctx, "add case update", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	updates, err := h.service.ListUpdates(r.Context(), caseID)
	if err != nil {
		h.logFailure(r.Context(), "list case updates", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"updates": updates})
}

type addInvoiceRequest struct {
	Title       string `json:"title"`
	AmountCents int64  `json:"amount_cents"`
	Vendor      string `json:"vendor"`
	Description string `json:"description"`
	InvoiceDate string `json:"invoice_date"`
	Category    string `json:"category"`
	ReceiptRef  string `json:"receipt_ref"`
}

// parseInvoiceDate accepts a calendar date or a full timestamp. An empty
// value means "use the request time".
func parseInvoiceDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "invoice_date must be YYYY-MM-DD or RFC 3339")
}

func (h *Handler) handleAddInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req addInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	invoiceDate, err := parseInvoiceDate(req.InvoiceDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	inv, err := h.service.AddInvoice(ctx, service.AddInvoiceInput{
		CaseID:      caseID,
		Title:       req.Title,
		Amount:      domain.Money(req.AmountCents),
		Vendor:      req.Vendor,
		Description: req.Description,
		InvoiceDate: invoiceDate,
		Category:    req.Category,
		ReceiptRef:  req.ReceiptRef,
	})
	if err != nil {
		h.logFailure(ctx, "add invoice", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, inv)
}

type advanceInvoiceRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleAdvanceInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseInvoiceID(chi.URLParam(r, "invoiceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req advanceInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	next, err := domain.ParseInvoiceStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	inv, err := h.service.AdvanceInvoiceStatus(ctx, id, next)
	if err != nil {
		h.logFailure(ctx, "advance invoice", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	invoices, err := h.service.ListInvoices(r.Context(), caseID)
	if err != nil {
		h.logFailure(r.Context(), "list invoices", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

// caseLedgerResponse swaps the raw donation entries for their public views
// so anonymous donors stay anonymous in the audit trail.
type caseLedgerResponse struct {
	*service.CaseLedger
	Donations []ledgermodels.PublicView `json:"donations"`
}

func (h *Handler) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ledger, err := h.service.GetCaseLedger(r.Context(), caseID)
	if err != nil {
		h.logFailure(r.Context(), "get case ledger", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caseLedgerResponse{
		CaseLedger: ledger,
		Donations:  ledgermodels.PublicViews(ledger.Donations),
	})
}

func (h *Handler) logFailure(ctx context.Context, op string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "operation failed",
			"op", op,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, "operation rejected",
		"op", op,
		"code", string(code),
		"request_id", requestcontext.RequestID(ctx),
	)
}
