package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
)

// Generator is the per-product video generation state machine.
type Generator interface {
	Trigger(ctx context.Context, product models.Product) (models.GenerationState, error)
	Preload(ctx context.Context, products []models.Product) error
	Ready(ids []string) bool
	State(id string) models.GenerationState
	States() map[string]models.GenerationState
	Modal() models.ModalState
	OpenModal(id string) (models.ModalState, error)
	CloseModal() models.ModalState
	Retain(ids []string)
}

// ProductSource fetches host product snapshots.
type ProductSource interface {
	ListProducts(ctx context.Context, feed models.Feed) ([]models.Product, error)
}
