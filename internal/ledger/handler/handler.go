package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medfund/internal/ledger/models"
	"medfund/internal/ledger/service"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/platform/httputil"
	"medfund/pkg/requestcontext"
)

// Service defines the ledger operations the handler needs.
type Service interface {
	RecordDonation(ctx context.Context, in service.RecordDonationInput) (*service.RecordDonationResult, error)
	GetDonation(ctx context.Context, id domain.DonationID) (*models.Donation, error)
	ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.Donation, error)
	ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*models.Donation, error)
	GetDonorTotal(ctx context.Context, donorID domain.DonorID) (domain.Money, error)
}

// Handler wires donation routes to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a donation Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the donation routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/donations", h.handleRecordDonation)
	r.Get("/donations/{donationID}", h.handleGetDonation)
	r.Get("/cases/{caseID}/donations", h.handleListByCase)
	r.Get("/donors/{donorID}/donations", h.handleListByDonor)
	r.Get("/donors/{donorID}/total", h.handleDonorTotal)
}

type recordDonationRequest struct {
	DonorID       string `json:"donor_id"`
	CaseID        string `json:"case_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	IsAnonymous   bool   `json:"is_anonymous"`
	Message       string `json:"message"`
}

type recordDonationResponse struct {
	Donation        models.PublicView `json:"donation"`
	CaseRaisedCents int64             `json:"case_raised_cents"`
	CaseStatus      string            `json:"case_status"`
	DonorTotalCents int64             `json:"donor_total_cents"`
	CrossedGoal     bool              `json:"crossed_goal"`
}

func (h *Handler) handleRecordDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	donorID, err := domain.ParseDonorID(req.DonorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	caseID, err := domain.ParseCaseID(req.CaseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.RecordDonation(ctx, service.RecordDonationInput{
		DonorID:       donorID,
		CaseID:        caseID,
		Amount:        domain.Money(req.AmountCents),
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		IsAnonymous:   req.IsAnonymous,
		Message:       req.Message,
	})
	if err != nil {
		h.logFailure(ctx, "record donation", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, recordDonationResponse{
		Donation:        result.Donation.Public(),
		CaseRaisedCents: result.Case.RaisedAmount.Cents(),
		CaseStatus:      result.Case.Status.String(),
		DonorTotalCents: result.DonorTotal.Cents(),
		CrossedGoal:     result.CrossedGoal,
	})
}

func (h *Handler) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseDonationID(chi.URLParam(r, "donationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.service.GetDonation(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d.Public())
}

func (h *Handler) handleListByCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	donations, err := h.service.ListByCase(r.Context(), caseID)
	if err != nil {
		h.logFailure(r.Context(), "list case donations", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDonationList(donations))
}

func (h *Handler) handleListByDonor(w http.ResponseWriter, r *http.Request) {
	donorID, err := domain.ParseDonorID(chi.URLParam(r, "donorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	donations, err := h.service.ListByDonor(r.Context(), donorID)
	if err != nil {
		h.logFailure(r.Context(), "list donor donations", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDonationList(donations))
}

func (h *Handler) handleDonorTotal(w http.ResponseWriter, r *http.Request) {
	donorID, err := domain.ParseDonorID(chi.URLParam(r, "donorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	total, err := h.service.GetDonorTotal(r.Context(), donorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"donor_id":    donorID.String(),
		"total_cents": total.Cents(),
	})
}

func toDonationList(donations []*models.Donation) map[string]any {
	return map[string]any{"donations": models.PublicViews(donations)}
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
