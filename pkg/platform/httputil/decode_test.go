package httputil

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pincheck/pkg/domain-errors"
)

type testRequest struct {
	Pincode string `json:"pincode"`
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pincode":"560001"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeJSON[testRequest](w, r, discard)
		require.True(t, ok)
		assert.Equal(t, "560001", req.Pincode)
	})

	t.Run("writes 400 for malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pincode":`))
		w := httptest.NewRecorder()

		req, ok := DecodeJSON[testRequest](w, r, discard)
		assert.False(t, ok)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"bad_request"`)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "The pincode must comprise 6 numerical digits."), http.StatusBadRequest, "validation_error"},
		{"not found", dErrors.New(dErrors.CodeNotFound, "widget not found"), http.StatusNotFound, "not_found"},
		{"bad gateway", dErrors.New(dErrors.CodeBadGateway, "upstream unreachable"), http.StatusBadGateway, "bad_gateway"},
		{"timeout", dErrors.New(dErrors.CodeTimeout, "upstream timed out"), http.StatusGatewayTimeout, "upstream_timeout"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), `"error":"`+tt.code+`"`)
		})
	}

	t.Run("plain errors do not leak their message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("secret detail"))
		assert.NotContains(t, w.Body.String(), "secret detail")
	})
}
