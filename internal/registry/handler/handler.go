package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"medfund/internal/registry/models"
	"medfund/internal/registry/store"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/platform/httputil"
	pstrings "medfund/pkg/platform/strings"
	"medfund/pkg/requestcontext"
)

// Service defines the case operations the handler needs.
type Service interface {
	CreateCase(ctx context.Context, in models.CreateCaseInput) (*models.Case, error)
	GetCase(ctx context.Context, id domain.CaseID) (*models.Case, error)
	ListCases(ctx context.Context, filter store.Filter) ([]*models.Case, error)
	VerifyCase(ctx context.Context, caseID domain.CaseID, verifierID domain.DoctorID) (*models.Case, error)
	MarkCompleted(ctx context.Context, caseID domain.CaseID) (*models.Case, error)
	Cancel(ctx context.Context, caseID domain.CaseID) (*models.Case, error)
	SetStatus(ctx context.Context, caseID domain.CaseID, next domain.CaseStatus) (*models.Case, error)
}

// Handler wires case routes to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
	admin   func(http.Handler) http.Handler
}

// New creates a case Handler. admin guards the administrative routes.
func New(service Service, logger *slog.Logger, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logger: logger, admin: admin}
}

// Register mounts the case routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.handleCreateCase)
	r.Get("/cases", h.handleListCases)
	r.Get("/cases/{caseID}", h.handleGetCase)

	r.Group(func(r chi.Router) {
		r.Use(h.admin)
		r.Post("/cases/{caseID}/verify", h.handleVerifyCase)
		r.Post("/cases/{caseID}/complete", h.handleMarkCompleted)
		r.Post("/cases/{caseID}/cancel", h.handleCancel)
		r.Patch("/cases/{caseID}/status", h.handleSetStatus)
	})
}

type createCaseRequest struct {
	PatientID       string `json:"patient_id"`
	Title           string `json:"title"`
	TreatmentType   string `json:"treatment_type"`
	Description     string `json:"description"`
	GoalAmountCents int64  `json:"goal_amount_cents"`
	UrgencyLevel    string `json:"urgency_level"`
	ConsentGiven    bool   `json:"consent_given"`
}

type caseResponse struct {
	*models.Case
	PercentFunded float64 `json:"percent_funded"`
}

func toCaseResponse(c *models.Case) caseResponse {
	return caseResponse{Case: c, PercentFunded: c.PercentFunded()}
}

func (h *Handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	patientID, err := domain.ParsePatientID(req.PatientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	in := models.CreateCaseInput{
		PatientID:    patientID,
		Title:        req.Title,
		Description:  req.Description,
		ConsentGiven: req.ConsentGiven,
	}
	// Enum and amount validation happens in the domain constructor; pass raw
	// values through so the error messages come from one place.
	in.TreatmentType = domain.TreatmentType(req.TreatmentType)
	in.UrgencyLevel = domain.UrgencyLevel(req.UrgencyLevel)
	in.GoalAmount = domain.Money(req.GoalAmountCents)

	c, err := h.service.CreateCase(ctx, in)
	if err != nil {
		h.logFailure(ctx, "create case", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCaseResponse(c))
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.GetCase(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cases, err := h.service.ListCases(r.Context(), filter)
	if err != nil {
		h.logFailure(r.Context(), "list cases", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]caseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, toCaseResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": out})
}

func parseFilter(r *http.Request) (store.Filter, error) {
	var filter store.Filter
	q := r.URL.Query()

	if raw := q.Get("treatment_type"); raw != "" {
		t, err := domain.ParseTreatmentType(raw)
		if err != nil {
			return filter, err
		}
		filter.TreatmentType = t
	}
	if raw := q.Get("urgency_level"); raw != "" {
		u, err := domain.ParseUrgencyLevel(raw)
		if err != nil {
			return filter, err
		}
		filter.UrgencyLevel = u
	}
	if raw := q.Get("status"); raw != "" {
		for _, part := range pstrings.DedupeAndTrimLower(strings.Split(raw, ",")) {
			st, err := domain.ParseCaseStatus(part)
			if err != nil {
				return filter, err
			}
			filter.StatusIn = append(filter.StatusIn, st)
		}
	}
	return filter, nil
}

type verifyCaseRequest struct {
	VerifierID string `json:"verifier_id"`
}

func (h *Handler) handleVerifyCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req verifyCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	verifierID, err := domain.ParseDoctorID(req.VerifierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.VerifyCase(r.Context(), caseID, verifierID)
	if err != nil {
		h.logFailure(r.Context(), "verify case", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.MarkCompleted)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Cancel)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.CaseID) (*models.Case, error)) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := op(r.Context(), caseID)
	if err != nil {
		h.logFailure(r.Context(), "case lifecycle operation", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	caseID, err := domain.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	next, err := domain.ParseCaseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.SetStatus(r.Context(), caseID, next)
	if err != nil {
		h.logFailure(r.Context(), "set case status", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
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
