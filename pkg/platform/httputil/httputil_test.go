package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "biogate/pkg/domain-errors"
)

func TestDomainCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeValidation, http.StatusBadRequest},
		{dErrors.CodeInvalidImage, http.StatusUnprocessableEntity},
		{dErrors.CodeNoFaceDetected, http.StatusUnprocessableEntity},
		{dErrors.CodeMultipleFaces, http.StatusUnprocessableEntity},
		{dErrors.CodeNotEnrolled, http.StatusNotFound},
		{dErrors.CodeCapabilityUnavailable, http.StatusServiceUnavailable},
		{dErrors.CodeStorage, http.StatusServiceUnavailable},
		{dErrors.CodeDecryptionFailed, http.StatusInternalServerError},
		{dErrors.CodeMalformedTemplate, http.StatusInternalServerError},
		{dErrors.CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout},
		{dErrors.Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, DomainCodeToHTTPStatus(tt.code))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("client error carries description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotEnrolled, "no active template"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_enrolled", body.Error)
		assert.Equal(t, "no active template", body.ErrorDescription)
	})

	t.Run("corruption hides description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeDecryptionFailed, "auth tag mismatch"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"decryption_failed"}`, w.Body.String())
	})

	t.Run("plain error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
	})
}
