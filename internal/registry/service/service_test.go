package service

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"medfund/internal/directory"
	"medfund/internal/events"
	"medfund/internal/registry/models"
	"medfund/internal/registry/store/memory"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/testutil"
)

type RegistryServiceSuite struct {
	suite.Suite
	store    *memory.InMemory
	patients *directory.InMemoryPatients
	doctors  *directory.InMemoryDoctors
	emitter  *events.Emitter
	service  *Service

	patientID domain.PatientID
	doctorID  domain.DoctorID
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.store = memory.NewInMemory()
	s.patients = directory.NewInMemoryPatients()
	s.doctors = directory.NewInMemoryDoctors()
	s.emitter = events.NewEmitter(64, slog.Default())

	s.patientID = domain.NewPatientID()
	s.doctorID = domain.NewDoctorID()
	s.patients.Add(s.patientID)
	s.doctors.Add(s.doctorID)

	s.service = New(s.store, s.patients, s.doctors, slog.Default(),
		WithEmitter(s.emitter))
}

func (s *RegistryServiceSuite) validInput() models.CreateCaseInput {
	return models.CreateCaseInput{
		PatientID:     s.patientID,
		Title:         "Kidney dialysis support",
		TreatmentType: domain.TreatmentDialysis,
		Description:   "Three sessions a week",
		GoalAmount:    domain.Money(500_000),
		UrgencyLevel:  domain.UrgencyHigh,
		ConsentGiven:  true,
	}
}

func (s *RegistryServiceSuite) TestCreateCase() {
	s.Run("creates an active case when verification is not required", func() {
		c, err := s.service.CreateCase(testutil.Context(), s.validInput())
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusActive, c.Status)
		s.Equal(domain.Money(0), c.RaisedAmount)
		s.True(c.ConsentGiven)
		s.Equal(testutil.FixedTime, c.CreatedAt)
	})

	s.Run("rejects missing consent before any other validation", func() {
		in := s.validInput()
		in.ConsentGiven = false
		in.Title = ""

		_, err := s.service.CreateCase(testutil.Context(), in)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingConsent))
	})

	s.Run("rejects unknown patient", func() {
		in := s.validInput()
		in.PatientID = domain.NewPatientID()

		_, err := s.service.CreateCase(testutil.Context(), in)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects non-positive goal", func() {
		in := s.validInput()
		in.GoalAmount = 0

		_, err := s.service.CreateCase(testutil.Context(), in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown treatment type", func() {
		in := s.validInput()
		in.TreatmentType = "acupuncture"

		_, err := s.service.CreateCase(testutil.Context(), in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RegistryServiceSuite) TestVerificationGate() {
	gated := New(s.store, s.patients, s.doctors, slog.Default(),
		WithVerificationGate(true))

	c, err := gated.CreateCase(testutil.Context(), s.validInput())
	s.Require().NoError(err)
	s.Equal(domain.CaseStatusPendingVerification, c.Status)

	s.Run("verification moves the case to active and records the verifier", func() {
		verified, err := gated.VerifyCase(testutil.Context(), c.ID, s.doctorID)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusActive, verified.Status)
		s.Require().NotNil(verified.VerifierID)
		s.Equal(s.doctorID, *verified.VerifierID)
	})

	s.Run("verifying an already active case is an invalid state", func() {
		_, err := gated.VerifyCase(testutil.Context(), c.ID, s.doctorID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *RegistryServiceSuite) TestVerifyCase() {
	s.Run("unknown doctor is rejected", func() {
		c, err := s.service.CreateCase(testutil.Context(), s.validInput())
		s.Require().NoError(err)

		_, err = s.service.VerifyCase(testutil.Context(), c.ID, domain.NewDoctorID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown case is rejected", func() {
		_, err := s.service.VerifyCase(testutil.Context(), domain.NewCaseID(), s.doctorID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RegistryServiceSuite) TestLifecycle() {
	s.Run("active case completes", func() {
		c, err := s.service.CreateCase(testutil.Context(), s.validInput())
		s.Require().NoError(err)

		done, err := s.service.MarkCompleted(testutil.Context(), c.ID)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusCompleted, done.Status)
	})

	s.Run("completed case cannot be cancelled", func() {
		c, err := s.service.CreateCase(testutil.Context(), s.validInput())
		s.Require().NoError(err)
		_, err = s.service.MarkCompleted(testutil.Context(), c.ID)
		s.Require().NoError(err)

		_, err = s.service.Cancel(testutil.Context(), c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("cancelled case stays readable", func() {
		c, err := s.service.CreateCase(testutil.Context(), s.validInput())
		s.Require().NoError(err)
		_, err = s.service.Cancel(testutil.Context(), c.ID)
		s.Require().NoError(err)

		got, err := s.service.GetCase(testutil.Context(), c.ID)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusCancelled, got.Status)
	})

	s.Run("SetStatus enforces the transition table", func() {
		c, err := s.service.CreateCase(testutil.Context(), s.validInput())
		s.Require().NoError(err)

		_, err = s.service.SetStatus(testutil.Context(), c.ID, domain.CaseStatusPendingVerification)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		updated, err := s.service.SetStatus(testutil.Context(), c.ID, domain.CaseStatusCancelled)
		s.Require().NoError(err)
		s.Equal(domain.CaseStatusCancelled, updated.Status)
	})
}
