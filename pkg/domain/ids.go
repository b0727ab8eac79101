// Package domain holds typed identifiers and value objects shared by all
// services. IDs are distinct types over uuid.UUID so the compiler rejects
// cross-entity assignment; construct from external input via the Parse
// functions, which enforce well-formed, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "medfund/pkg/domain-errors"
)

type (
	// CaseID identifies a sponsorship case.
	CaseID uuid.UUID
	// PatientID identifies the patient who owns a case. Patients live in an
	// external directory; only existence is checked here.
	PatientID uuid.UUID
	// DoctorID identifies a verifying doctor in the external directory.
	DoctorID uuid.UUID
	// DonorID identifies a donor in the external directory.
	DonorID uuid.UUID
	// DonationID identifies a single ledger entry.
	DonationID uuid.UUID
	// UpdateID identifies a case update in the transparency trail.
	UpdateID uuid.UUID
	// InvoiceID identifies an expenditure invoice.
	InvoiceID uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s cannot be nil", what)
	}
	return u, nil
}

// ParseCaseID validates external input as a CaseID.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case id")
	return CaseID(u), err
}

// ParsePatientID validates external input as a PatientID.
func ParsePatientID(s string) (PatientID, error) {
	u, err := parseUUID(s, "patient id")
	return PatientID(u), err
}

// ParseDoctorID validates external input as a DoctorID.
func ParseDoctorID(s string) (DoctorID, error) {
	u, err := parseUUID(s, "doctor id")
	return DoctorID(u), err
}

// ParseDonorID validates external input as a DonorID.
func ParseDonorID(s string) (DonorID, error) {
	u, err := parseUUID(s, "donor id")
	return DonorID(u), err
}

// ParseDonationID validates external input as a DonationID.
func ParseDonationID(s string) (DonationID, error) {
	u, err := parseUUID(s, "donation id")
	return DonationID(u), err
}

// ParseInvoiceID validates external input as an InvoiceID.
func ParseInvoiceID(s string) (InvoiceID, error) {
	u, err := parseUUID(s, "invoice id")
	return InvoiceID(u), err
}

func (id CaseID) String() string     { return uuid.UUID(id).String() }
func (id PatientID) String() string  { return uuid.UUID(id).String() }
func (id DoctorID) String() string   { return uuid.UUID(id).String() }
func (id DonorID) String() string    { return uuid.UUID(id).String() }
func (id DonationID) String() string { return uuid.UUID(id).String() }
func (id UpdateID) String() string   { return uuid.UUID(id).String() }
func (id InvoiceID) String() string  { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PatientID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DoctorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DonorID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DonationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UpdateID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id InvoiceID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewCaseID generates a fresh CaseID.
func NewCaseID() CaseID { return CaseID(uuid.New()) }

// NewPatientID generates a fresh PatientID.
func NewPatientID() PatientID { return PatientID(uuid.New()) }

// NewDoctorID generates a fresh DoctorID.
func NewDoctorID() DoctorID { return DoctorID(uuid.New()) }

// NewDonorID generates a fresh DonorID.
func NewDonorID() DonorID { return DonorID(uuid.New()) }

// NewDonationID generates a fresh DonationID.
func NewDonationID() DonationID { return DonationID(uuid.New()) }

// NewUpdateID generates a fresh UpdateID.
func NewUpdateID() UpdateID { return UpdateID(uuid.New()) }

// NewInvoiceID generates a fresh InvoiceID.
func NewInvoiceID() InvoiceID { return InvoiceID(uuid.New()) }

// MarshalText implementations keep IDs as canonical UUID strings in JSON.
func (id CaseID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id PatientID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id DoctorID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id DonorID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id DonationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id UpdateID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id InvoiceID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func unmarshalID(data []byte) (uuid.UUID, error) {
	return uuid.Parse(string(data))
}

func (id *CaseID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = CaseID(u)
	return err
}

func (id *PatientID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = PatientID(u)
	return err
}

func (id *DoctorID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = DoctorID(u)
	return err
}

func (id *DonorID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = DonorID(u)
	return err
}

func (id *DonationID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = DonationID(u)
	return err
}

func (id *UpdateID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = UpdateID(u)
	return err
}

func (id *InvoiceID) UnmarshalText(data []byte) error {
	u, err := unmarshalID(data)
	*id = InvoiceID(u)
	return err
}
