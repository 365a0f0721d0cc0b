package kafka

import (
	"context"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/internal/usecase"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// snapshotHandler adapts the deck usecase to implement SnapshotHandler
type snapshotHandler struct {
	deckUsecase usecase.DeckUsecase
}

func NewSnapshotHandler(deckUsecase usecase.DeckUsecase) SnapshotHandler {
	return &snapshotHandler{deckUsecase: deckUsecase}
}

// HandleSnapshot replaces the deck when the snapshot targets the feed being
// shown. Snapshots for the other feed are dropped.
func (h *snapshotHandler) HandleSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	if snapshot.Feed != "" && !snapshot.Feed.Valid() {
		return status.Errorf(codes.InvalidArgument, "unknown feed %q", snapshot.Feed)
	}
	if current := h.deckUsecase.Feed(); snapshot.Feed != "" && snapshot.Feed != current {
		log.Infow(ctx, "Ignoring snapshot for another feed", "feed", snapshot.Feed, "current", current)
		return nil
	}
	products := models.Identified(snapshot.Products)
	if dropped := len(snapshot.Products) - len(products); dropped > 0 {
		log.Warnw(ctx, "Dropping snapshot products without id", "feed", snapshot.Feed, "dropped", dropped)
	}
	snapshot.Products = products
	view := h.deckUsecase.ReplaceSnapshot(ctx, snapshot)
	log.Infow(ctx, "Applied pushed snapshot", "version", view.Version, "count", len(view.Stack))
	return nil
}
