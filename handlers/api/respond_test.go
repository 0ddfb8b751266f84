package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONMergesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, Fields{"user": map[string]string{"_id": "u1"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["user"])
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, "done")

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
}

func TestFail(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"conflict outcome stays 200", http.StatusOK},
		{"not found", http.StatusNotFound},
		{"unauthorized", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Fail(rec, tt.status, "nope")

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "nope", body["message"])
		})
	}
}
