package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	dErrors "tickethub/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cardForm struct {
	Card       string
	normalized bool
}

func (f *cardForm) Bind(values url.Values) {
	f.Card = values.Get("card")
}

func (f *cardForm) Normalize() {
	f.Card = strings.TrimSpace(f.Card)
	f.normalized = true
}

func (f *cardForm) Validate() error {
	if len(f.Card) < 8 {
		return errors.New("card is too short")
	}
	return nil
}

type domainValidatedForm struct {
	Method string
}

func (f *domainValidatedForm) Bind(values url.Values) {
	f.Method = values.Get("method")
}

func (f *domainValidatedForm) Validate() error {
	if f.Method == "" {
		return dErrors.New(dErrors.CodeConflict, "pick one")
	}
	return nil
}

func newFormRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDecodeForm(t *testing.T) {
	t.Run("binds, normalizes and validates", func(t *testing.T) {
		form, err := DecodeForm[cardForm](newFormRequest("card=++GHA-123456789-0++"))

		require.NoError(t, err)
		assert.Equal(t, "GHA-123456789-0", form.Card)
		assert.True(t, form.normalized)
	})

	t.Run("returns decoded value alongside validation error", func(t *testing.T) {
		form, err := DecodeForm[cardForm](newFormRequest("card=GHA"))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "GHA", form.Card)
	})

	t.Run("preserves domain error codes from Validate", func(t *testing.T) {
		_, err := DecodeForm[domainValidatedForm](newFormRequest("method="))

		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"rejection", dErrors.New(dErrors.CodeRejected, "Card declined"), http.StatusUnprocessableEntity, "rejected"},
		{"transport", dErrors.New(dErrors.CodeTransport, "Network or server error"), http.StatusBadGateway, "remote_unavailable"},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "redis is down"), http.StatusServiceUnavailable, "service_unavailable"},
		{"validation", dErrors.New(dErrors.CodeValidation, "bad"), http.StatusBadRequest, "validation_error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}
