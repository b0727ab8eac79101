package domain

import dErrors "medfund/pkg/domain-errors"

// UpdateType classifies a transparency-trail case update.
type UpdateType string

const (
	UpdateThankYou UpdateType = "thank_you"
	UpdateRecovery UpdateType = "recovery"
	UpdateGeneral  UpdateType = "general"
)

var validUpdateTypes = map[UpdateType]bool{
	UpdateThankYou: true,
	UpdateRecovery: true,
	UpdateGeneral:  true,
}

// ParseUpdateType constructs an UpdateType from external input.
func ParseUpdateType(s string) (UpdateType, error) {
	u := UpdateType(s)
	if !validUpdateTypes[u] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown update type %q", s)
	}
	return u, nil
}

func (u UpdateType) IsValid() bool  { return validUpdateTypes[u] }
func (u UpdateType) String() string { return string(u) }

// AuthorType identifies who wrote a case update.
type AuthorType string

const (
	AuthorPatient AuthorType = "patient"
	AuthorDoctor  AuthorType = "doctor"
	AuthorAdmin   AuthorType = "admin"
)

var validAuthorTypes = map[AuthorType]bool{
	AuthorPatient: true,
	AuthorDoctor:  true,
	AuthorAdmin:   true,
}

// ParseAuthorType constructs an AuthorType from external input.
func ParseAuthorType(s string) (AuthorType, error) {
	a := AuthorType(s)
	if !validAuthorTypes[a] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown author type %q", s)
	}
	return a, nil
}

func (a AuthorType) IsValid() bool  { return validAuthorTypes[a] }
func (a AuthorType) String() string { return string(a) }
