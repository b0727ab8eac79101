package derrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "case missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeValidation))
	})

	t.Run("matches wrapped code", func(t *testing.T) {
		inner := New(CodeConflict, "txn id collision")
		outer := Wrap(inner, CodeInternal, "record donation")
		assert.True(t, HasCode(outer, CodeConflict))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("false for uncoded errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil cause yields nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "noop"))
	})

	t.Run("preserves cause chain", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(fmt.Errorf("append: %w", cause), CodeInternal, "store write")
		assert.ErrorIs(t, err, cause)
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad amount")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeConflict, "contention")))
	assert.True(t, IsRetryable(New(CodeUnavailable, "db down")))
	assert.False(t, IsRetryable(New(CodeValidation, "bad amount")))
	assert.False(t, IsRetryable(New(CodeNotFound, "missing")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(CodeInvalidState))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(CodeMissingConsent))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("mystery")))
}
