// Package funding drives the assembled HTTP surface end to end: case
// creation through donations, the funded transition, the transparency
// trail, and platform stats, all through the public router.
package funding

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfund/internal/directory"
	ledgerhandler "medfund/internal/ledger/handler"
	ledgerservice "medfund/internal/ledger/service"
	ledgermemory "medfund/internal/ledger/store/memory"
	"medfund/internal/platform/metrics"
	"medfund/internal/platform/middleware"
	registryhandler "medfund/internal/registry/handler"
	registryservice "medfund/internal/registry/service"
	casememory "medfund/internal/registry/store/memory"
	"medfund/internal/stats"
	transparencyhandler "medfund/internal/transparency/handler"
	transparencyservice "medfund/internal/transparency/service"
	transparencymemory "medfund/internal/transparency/store/memory"
	httptransport "medfund/internal/transport/http"
	"medfund/pkg/domain"
	"medfund/pkg/testutil"
)

type platform struct {
	router    http.Handler
	validator *middleware.AdminValidator
	patientID domain.PatientID
	donorID   domain.DonorID
}

func newPlatform(t *testing.T) *platform {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cases := casememory.NewInMemory()
	donations := ledgermemory.NewInMemory()
	updates := transparencymemory.NewInMemoryUpdates()
	invoices := transparencymemory.NewInMemoryInvoices()

	patients := directory.NewInMemoryPatients()
	doctors := directory.NewInMemoryDoctors()
	donors := directory.NewInMemoryDonors()
	patientID := domain.NewPatientID()
	donorID := domain.NewDonorID()
	patients.Add(patientID)
	donors.Add(donorID)

	m := metrics.New(prometheus.NewRegistry())
	validator := middleware.NewAdminValidator("integration-key")
	admin := middleware.RequireAdmin(validator, logger)

	registrySvc := registryservice.New(cases, patients, doctors, logger,
		registryservice.WithMetrics(m))
	ledgerSvc := ledgerservice.New(donations, cases, donors,
		directory.NewApprovingGateway(), logger,
		ledgerservice.WithMetrics(m))
	transparencySvc := transparencyservice.New(updates, invoices, cases, donations, logger,
		transparencyservice.WithMetrics(m))
	statsSvc := stats.New(cases, donations, nil, 0, logger)

	router := httptransport.NewRouter(httptransport.Deps{
		Registry:     registryhandler.New(registrySvc, logger, admin),
		Ledger:       ledgerhandler.New(ledgerSvc, logger),
		Transparency: transparencyhandler.New(transparencySvc, logger, admin),
		Stats:        stats.NewHandler(statsSvc, logger),
		Metrics:      m,
		Logger:       logger,
	})

	return &platform{
		router:    router,
		validator: validator,
		patientID: patientID,
		donorID:   donorID,
	}
}

func (p *platform) adminHeader(t *testing.T) string {
	t.Helper()
	token, err := p.validator.IssueToken("ops-admin", time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestFundingFlow(t *testing.T) {
	p := newPlatform(t)

	// A patient opens a case.
	rr := testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/cases", map[string]any{
			"patient_id":        p.patientID.String(),
			"title":             "Heart valve replacement",
			"treatment_type":    "surgery",
			"goal_amount_cents": 100_000,
			"urgency_level":     "critical",
			"consent_given":     true,
		}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[map[string]any](t, rr)
	caseID := (*created)["id"].(string)

	donate := func(cents int64) *map[string]any {
		rr := testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodPost,
			"/v1/donations", map[string]any{
				"donor_id":       p.donorID.String(),
				"case_id":        caseID,
				"amount_cents":   cents,
				"payment_method": "card",
			}))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		return testutil.UnmarshalResponse[map[string]any](t, rr)
	}

	// Two donations cross the goal; the second reports the transition.
	first := donate(60_000)
	assert.Equal(t, false, (*first)["crossed_goal"])
	assert.Equal(t, "active", (*first)["case_status"])

	second := donate(50_000)
	assert.Equal(t, true, (*second)["crossed_goal"])
	assert.Equal(t, "funded", (*second)["case_status"])
	assert.Equal(t, float64(110_000), (*second)["case_raised_cents"])

	// Funded cases keep accepting donations.
	third := donate(5_000)
	assert.Equal(t, false, (*third)["crossed_goal"])

	// The patient posts a thank-you note.
	rr = testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/cases/"+caseID+"/updates", map[string]string{
			"author_id":   p.patientID.String(),
			"author_type": "patient",
			"update_type": "thank_you",
			"content":     "Surgery is scheduled, thank you.",
		}))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	// An admin records a hospital invoice and marks it paid.
	req := testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/cases/"+caseID+"/invoices", map[string]any{
			"amount_cents": 90_000,
			"vendor":       "St. Mary Hospital",
			"description":  "Valve replacement surgery",
		})
	req.Header.Set("Authorization", p.adminHeader(t))
	rr = testutil.DoRequest(p.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	invoice := testutil.UnmarshalResponse[map[string]any](t, rr)

	req = testutil.NewJSONRequest(t, http.MethodPatch,
		"/v1/invoices/"+(*invoice)["id"].(string)+"/status",
		map[string]string{"status": "paid"})
	req.Header.Set("Authorization", p.adminHeader(t))
	rr = testutil.DoRequest(p.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// The public ledger view ties it together.
	rr = testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodGet,
		"/v1/cases/"+caseID+"/ledger", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	ledger := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(3), (*ledger)["donation_count"])
	assert.Equal(t, float64(115_000), (*ledger)["completed_cents"])
	assert.InDelta(t, 115.0, (*ledger)["percent_funded"], 0.001)
	assert.Len(t, (*ledger)["donations"], 3)
	assert.Len(t, (*ledger)["updates"], 1)
	assert.Len(t, (*ledger)["invoices"], 1)

	// Platform stats reflect the case and the money.
	rr = testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodGet, "/v1/stats", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	platformStats := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(115_000), (*platformStats)["total_raised_cents"])
	assert.Equal(t, float64(1), (*platformStats)["fully_funded_cases"])
}

func TestFundingFlow_AdminBoundary(t *testing.T) {
	p := newPlatform(t)

	rr := testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/cases", map[string]any{
			"patient_id":        p.patientID.String(),
			"title":             "Ongoing dialysis",
			"treatment_type":    "dialysis",
			"goal_amount_cents": 40_000,
			"urgency_level":     "high",
			"consent_given":     true,
		}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[map[string]any](t, rr)
	caseID := (*created)["id"].(string)

	// Lifecycle mutations are admin-only.
	rr = testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/cases/"+caseID+"/complete", nil))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/cases/"+caseID+"/complete", nil)
	req.Header.Set("Authorization", p.adminHeader(t))
	rr = testutil.DoRequest(p.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// Completed cases no longer take donations.
	rr = testutil.DoRequest(p.router, testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/donations", map[string]any{
			"donor_id":       p.donorID.String(),
			"case_id":        caseID,
			"amount_cents":   1_000,
			"payment_method": "card",
		}))
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertErrorCode(t, rr, "invalid_state")
}
