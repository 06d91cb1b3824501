package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arborlabs/keytree/internal/errors"
	"github.com/arborlabs/keytree/pkg/store"
)

func TestRespondWithError_DefaultMapsStoreSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing key", store.ErrNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{"bad cursor", store.ErrMalformedCursor, http.StatusBadRequest, apperrors.CodeMalformedCursor},
		{"permission failure", store.ErrAccessDenied, http.StatusForbidden, apperrors.CodeAccessDenied},
		{
			"wrapped by backend",
			&store.StoreError{Op: "Stat", Backend: "fs", Key: "a/b", Err: store.ErrNotFound},
			http.StatusNotFound,
			apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondWithError(rec, httptest.NewRequest(http.MethodGet, "/v1/objects/a/b", nil), tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)

			var body apperrors.HTTPErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestSetHTTPErrorResponder_ReplacesDefault(t *testing.T) {
	defer ResetHTTPErrorResponder()

	var captured error
	SetHTTPErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
		captured = err
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/v1/list", nil), store.ErrNotFound)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.ErrorIs(t, captured, store.ErrNotFound)
}

func TestSetHTTPErrorResponder_NilRestoresDefault(t *testing.T) {
	defer ResetHTTPErrorResponder()

	SetHTTPErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
	})
	SetHTTPErrorResponder(nil)

	// Back on the default adapter: a store sentinel maps to its
	// HTTP status again.
	rec := httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/v1/list", nil), store.ErrMalformedCursor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetHTTPErrorResponder(t *testing.T) {
	SetHTTPErrorResponder(func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ResetHTTPErrorResponder()

	rec := httptest.NewRecorder()
	respondWithError(rec, httptest.NewRequest(http.MethodGet, "/v1/objects/x", nil), store.ErrAccessDenied)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
