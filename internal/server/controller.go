package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/swipe-preview/internal/server/middleware"
	"github.com/nguyentranbao-ct/swipe-preview/internal/usecase"
)

type Controller interface {
	Health(c echo.Context) error
	GetDeck(c echo.Context, req emptyRequest) (*usecase.DeckView, error)
	ReplaceSnapshot(c echo.Context, req snapshotRequest) (*usecase.DeckView, error)
	Refresh(c echo.Context, req refreshRequest) (*usecase.DeckView, error)
	Swipe(c echo.Context, req swipeRequest) (*swipeResponse, error)
	Generate(c echo.Context, req productRequest) (*pkgmdw.Response, error)
	GenerationState(c echo.Context, req productRequest) (*models.GenerationState, error)
	GetModal(c echo.Context, req emptyRequest) (*usecase.ModalView, error)
	OpenModal(c echo.Context, req modalRequest) (*usecase.ModalView, error)
	CloseModal(c echo.Context, req emptyRequest) (*usecase.ModalView, error)
}

type emptyRequest struct{}

type snapshotRequest struct {
	Feed     models.Feed      `json:"feed" validate:"omitempty,feed"`
	Products []models.Product `json:"products" validate:"dive"`
}

type refreshRequest struct {
	Feed models.Feed `json:"feed" validate:"omitempty,feed"`
}

type swipeRequest struct {
	ProductID string   `json:"product_id" validate:"required"`
	OffsetX   *float64 `json:"offset_x" validate:"required"`
	Client    string   `header:"x-client"`
}

type swipeResponse struct {
	Committed bool              `json:"committed"`
	Deck      *usecase.DeckView `json:"deck"`
}

type productRequest struct {
	ProductID string `param:"id" validate:"required"`
	Client    string `header:"x-client"`
}

type modalRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// logRequest puts the product and the calling client on the access log line.
func logRequest(c echo.Context, productID, client string) {
	ctx := c.Request().Context()
	pkgmdw.AddLogField(ctx, "product_id", productID)
	if client != "" {
		pkgmdw.AddLogField(ctx, "client", client)
	}
}

type controller struct {
	deckUsecase usecase.DeckUsecase
}

func NewHandler(deckUsecase usecase.DeckUsecase) Controller {
	return &controller{
		deckUsecase: deckUsecase,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "swipe-preview",
	})
}

func (h *controller) GetDeck(c echo.Context, _ emptyRequest) (*usecase.DeckView, error) {
	return h.deckUsecase.View(c.Request().Context()), nil
}

func (h *controller) ReplaceSnapshot(c echo.Context, req snapshotRequest) (*usecase.DeckView, error) {
	snapshot := models.Snapshot{Feed: req.Feed, Products: req.Products}
	pkgmdw.AddLogField(c.Request().Context(), "feed", string(req.Feed))
	pkgmdw.AddLogField(c.Request().Context(), "products", len(req.Products))
	return h.deckUsecase.ReplaceSnapshot(c.Request().Context(), snapshot), nil
}

func (h *controller) Refresh(c echo.Context, req refreshRequest) (*usecase.DeckView, error) {
	pkgmdw.AddLogField(c.Request().Context(), "feed", string(req.Feed))
	view, err := h.deckUsecase.Load(c.Request().Context(), req.Feed)
	if err != nil {
		return nil, responseError(err)
	}
	return view, nil
}

func (h *controller) Swipe(c echo.Context, req swipeRequest) (*swipeResponse, error) {
	ctx := c.Request().Context()
	logRequest(c, req.ProductID, req.Client)

	res := h.deckUsecase.Swipe(ctx, req.ProductID, *req.OffsetX)
	return &swipeResponse{Committed: res.Committed, Deck: h.deckUsecase.View(ctx)}, nil
}

// Generate answers 202 once the product is Loading. Triggers for products
// that are not in the deck are acknowledged and ignored.
func (h *controller) Generate(c echo.Context, req productRequest) (*pkgmdw.Response, error) {
	ctx := c.Request().Context()
	logRequest(c, req.ProductID, req.Client)

	res, err := h.deckUsecase.Generate(ctx, req.ProductID)
	if err != nil {
		return nil, responseError(err)
	}
	status := http.StatusAccepted
	if res.Ignored {
		status = http.StatusOK
	}
	return &pkgmdw.Response{Status: status, Success: true, Data: res}, nil
}

func (h *controller) GenerationState(c echo.Context, req productRequest) (*models.GenerationState, error) {
	ctx := c.Request().Context()
	logRequest(c, req.ProductID, req.Client)

	st, err := h.deckUsecase.GenerationState(ctx, req.ProductID)
	if err != nil {
		return nil, responseError(err)
	}
	return &st, nil
}

func (h *controller) GetModal(c echo.Context, _ emptyRequest) (*usecase.ModalView, error) {
	return &h.deckUsecase.View(c.Request().Context()).Modal, nil
}

func (h *controller) OpenModal(c echo.Context, req modalRequest) (*usecase.ModalView, error) {
	ctx := c.Request().Context()
	pkgmdw.AddLogField(ctx, "product_id", req.ProductID)

	m, err := h.deckUsecase.OpenModal(ctx, req.ProductID)
	if err != nil {
		return nil, responseError(err)
	}
	return m, nil
}

func (h *controller) CloseModal(c echo.Context, _ emptyRequest) (*usecase.ModalView, error) {
	return h.deckUsecase.CloseModal(c.Request().Context()), nil
}
