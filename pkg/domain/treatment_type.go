package domain

import dErrors "medfund/pkg/domain-errors"

// TreatmentType categorizes the medical need a case funds.
type TreatmentType string

const (
	TreatmentSurgery        TreatmentType = "surgery"
	TreatmentCancer         TreatmentType = "cancer_treatment"
	TreatmentDialysis       TreatmentType = "dialysis"
	TreatmentRehabilitation TreatmentType = "physical_rehabilitation"
	TreatmentMedication     TreatmentType = "medication"
	TreatmentOther          TreatmentType = "other"
)

var validTreatmentTypes = map[TreatmentType]bool{
	TreatmentSurgery:        true,
	TreatmentCancer:         true,
	TreatmentDialysis:       true,
	TreatmentRehabilitation: true,
	TreatmentMedication:     true,
	TreatmentOther:          true,
}

// TreatmentTypes lists all supported treatment types in a stable order.
// Used by the stats service to build full breakdowns including zero rows.
func TreatmentTypes() []TreatmentType {
	return []TreatmentType{
		TreatmentSurgery,
		TreatmentCancer,
		TreatmentDialysis,
		TreatmentRehabilitation,
		TreatmentMedication,
		TreatmentOther,
	}
}

// ParseTreatmentType constructs a TreatmentType from external input.
func ParseTreatmentType(s string) (TreatmentType, error) {
	t := TreatmentType(s)
	if !validTreatmentTypes[t] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown treatment type %q", s)
	}
	return t, nil
}

func (t TreatmentType) IsValid() bool  { return validTreatmentTypes[t] }
func (t TreatmentType) String() string { return string(t) }
