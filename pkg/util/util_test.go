package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRestyClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","title":"Lamp"}`))
	}))
	defer srv.Close()

	var out struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	resp, err := NewRestyClient(time.Second).R().SetResult(&out).Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "p1", out.ID)
	assert.Equal(t, "Lamp", out.Title)
}

func TestGetHistogramVecReusesRegistered(t *testing.T) {
	first, err := GetHistogramVec("util_test_duration_seconds", "status")
	require.NoError(t, err)
	second, err := GetHistogramVec("util_test_duration_seconds", "status")
	require.NoError(t, err)
	assert.Same(t, first, second)
}
