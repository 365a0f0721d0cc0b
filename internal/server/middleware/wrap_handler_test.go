package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateRequest struct {
	ProductID string `param:"id" validate:"required"`
	Client    string `header:"x-client"`
}

type generateResponse struct {
	ProductID string `json:"product_id"`
	Client    string `json:"client"`
}

func TestWrapHandler(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	e.POST("/v1/products/:id/generate", WrapHandler(func(c echo.Context, req generateRequest) (*generateResponse, error) {
		return &generateResponse{ProductID: req.ProductID, Client: req.Client}, nil
	}))
	e.POST("/v1/products/:id/accepted", WrapHandler(func(c echo.Context, req generateRequest) (*Response, error) {
		return &Response{Status: http.StatusAccepted, Success: true, Data: req.ProductID}, nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/products/A/generate", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("x-client", "shop-mini")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"product_id":"A","client":"shop-mini"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/products/B/accepted", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":"B"}`, rec.Body.String())
}

func TestWrapHandlerRejectsBadSignatures(t *testing.T) {
	_, err := wrapHandler("not a func")
	require.Error(t, err)

	_, err = wrapHandler(func(c echo.Context) error { return nil })
	assert.ErrorContains(t, err, "invalid function arguments length")

	_, err = wrapHandler(func(c echo.Context, id string) error { return nil })
	assert.ErrorContains(t, err, "second argument must has type struct")

	_, err = wrapHandler(func(c echo.Context, req generateRequest) string { return "" })
	assert.ErrorContains(t, err, "last return argument must has type error")
}

func TestWrapHandlerNoResult(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	e.DELETE("/v1/modal", WrapHandler(func(c echo.Context, _ struct{}) error { return nil }))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/modal", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
