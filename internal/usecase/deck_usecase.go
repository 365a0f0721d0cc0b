package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/deck"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
)

// DeckUsecase joins the swipe deck, the generation state machine and the host
// product source. The host snapshot always wins over local state.
type DeckUsecase interface {
	Load(ctx context.Context, feed models.Feed) (*DeckView, error)
	ReplaceSnapshot(ctx context.Context, snapshot models.Snapshot) *DeckView
	Swipe(ctx context.Context, productID string, offsetX float64) deck.SwipeResult
	Generate(ctx context.Context, productID string) (*GenerateResult, error)
	GenerationState(ctx context.Context, productID string) (models.GenerationState, error)
	View(ctx context.Context) *DeckView
	OpenModal(ctx context.Context, productID string) (*ModalView, error)
	CloseModal(ctx context.Context) *ModalView
	Feed() models.Feed
	Stop()
}

// VisibleCard is one rendered card, in paint order.
type VisibleCard struct {
	Product    models.Product         `json:"product"`
	Top        bool                   `json:"top"`
	Generation models.GenerationState `json:"generation"`
}

type ModalView struct {
	models.ModalState
	VideoURL string `json:"videoUrl,omitempty"`
}

type DeckView struct {
	Feed    models.Feed                       `json:"feed"`
	Version uint64                            `json:"version"`
	Ready   bool                              `json:"ready"`
	Stack   []models.Product                  `json:"stack"`
	Visible []VisibleCard                     `json:"visible"`
	States  map[string]models.GenerationState `json:"states"`
	Modal   ModalView                         `json:"modal"`
}

type GenerateResult struct {
	Ignored bool                   `json:"ignored"`
	State   models.GenerationState `json:"state"`
}

type deckUsecase struct {
	deck       *deck.Deck
	generator  Generator
	source     ProductSource
	preloadAll bool

	// mu orders snapshot replacement against triggers so a trigger never
	// starts for a product that a concurrent snapshot already dropped.
	mu   sync.RWMutex
	feed models.Feed

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewDeckUsecase(cfg *config.Config, d *deck.Deck, generator Generator, source ProductSource) DeckUsecase {
	ctx, cancel := context.WithCancel(context.Background())
	feed := models.Feed(cfg.Catalog.Feed)
	if !feed.Valid() {
		feed = models.FeedPopular
	}
	return &deckUsecase{
		deck:       d,
		generator:  generator,
		source:     source,
		preloadAll: cfg.Generation.PreloadAll,
		feed:       feed,
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

func (u *deckUsecase) Feed() models.Feed {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.feed
}

func (u *deckUsecase) Load(ctx context.Context, feed models.Feed) (*DeckView, error) {
	if feed == "" {
		feed = u.Feed()
	}
	products, err := u.source.ListProducts(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("list %s products: %w", feed, err)
	}
	log.Infow(ctx, "Loaded product snapshot", "feed", feed, "count", len(products))
	return u.ReplaceSnapshot(ctx, models.Snapshot{Feed: feed, Products: products}), nil
}

func (u *deckUsecase) ReplaceSnapshot(ctx context.Context, snapshot models.Snapshot) *DeckView {
	u.mu.Lock()
	if snapshot.Feed != "" {
		u.feed = snapshot.Feed
	}
	version := u.deck.Replace(snapshot.Products)
	products := u.deck.Products()
	u.generator.Retain(models.ProductIDs(products))
	u.mu.Unlock()

	log.Infow(ctx, "Replaced product snapshot", "version", version, "count", len(products))
	if u.preloadAll && len(products) > 0 {
		u.startPreload(ctx, version, products)
	}
	return u.View(ctx)
}

func (u *deckUsecase) startPreload(ctx context.Context, version uint64, products []models.Product) {
	fields := log.Fields(ctx)
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		ctx := log.With(u.baseCtx, fields...)
		if err := u.generator.Preload(ctx, products); err != nil {
			log.Warnw(ctx, "Preload interrupted", "version", version, "error", err)
			return
		}
		if u.deck.Version() != version {
			log.Infow(ctx, "Snapshot changed during preload", "version", version)
			return
		}
		log.Infow(ctx, "Preload finished", "version", version,
			"ready", u.generator.Ready(models.ProductIDs(products)))
	}()
}

func (u *deckUsecase) Swipe(ctx context.Context, productID string, offsetX float64) deck.SwipeResult {
	res := u.deck.Swipe(productID, offsetX)
	if res.Committed {
		log.Infow(ctx, "Swiped product to back", "product_id", productID, "offset_x", offsetX)
	} else {
		log.Debugw(ctx, "Swipe ignored", "product_id", productID, "offset_x", offsetX)
	}
	return res
}

func (u *deckUsecase) Generate(ctx context.Context, productID string) (*GenerateResult, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	product, ok := u.deck.Lookup(productID)
	if !ok {
		log.Warnw(ctx, "Generation trigger ignored", "product_id", productID, "kind", models.KindProductNotFound)
		return &GenerateResult{Ignored: true, State: u.generator.State(productID)}, nil
	}
	state, err := u.generator.Trigger(ctx, product)
	if err != nil {
		return &GenerateResult{State: state}, err
	}
	log.Infow(ctx, "Generation triggered", "product_id", productID)
	return &GenerateResult{State: state}, nil
}

func (u *deckUsecase) GenerationState(ctx context.Context, productID string) (models.GenerationState, error) {
	if _, ok := u.deck.Lookup(productID); !ok {
		return models.GenerationState{}, models.ErrNotFound
	}
	return u.generator.State(productID), nil
}

func (u *deckUsecase) View(ctx context.Context) *DeckView {
	u.mu.RLock()
	defer u.mu.RUnlock()

	stack := u.deck.Products()
	states := u.generator.States()
	pair := deck.VisiblePair(stack)
	visible := make([]VisibleCard, len(pair))
	for i, p := range pair {
		st, ok := states[p.ID]
		if !ok {
			st = models.GenerationState{Phase: models.PhaseIdle}
		}
		visible[i] = VisibleCard{Product: p, Top: i == len(pair)-1, Generation: st}
	}

	ready := len(stack) > 0
	if u.preloadAll && ready {
		ready = u.generator.Ready(models.ProductIDs(stack))
	}

	return &DeckView{
		Feed:    u.feed,
		Version: u.deck.Version(),
		Ready:   ready,
		Stack:   stack,
		Visible: visible,
		States:  states,
		Modal:   u.modalView(),
	}
}

func (u *deckUsecase) OpenModal(ctx context.Context, productID string) (*ModalView, error) {
	if _, ok := u.deck.Lookup(productID); !ok {
		return nil, models.ErrNotFound
	}
	if _, err := u.generator.OpenModal(productID); err != nil {
		return nil, err
	}
	view := u.modalView()
	return &view, nil
}

func (u *deckUsecase) CloseModal(ctx context.Context) *ModalView {
	u.generator.CloseModal()
	view := u.modalView()
	return &view
}

func (u *deckUsecase) modalView() ModalView {
	m := u.generator.Modal()
	view := ModalView{ModalState: m}
	if m.Open {
		view.VideoURL = u.generator.State(m.ProductID).VideoURL
	}
	return view
}

// Stop cancels running preloads and waits for them.
func (u *deckUsecase) Stop() {
	u.cancel()
	u.wg.Wait()
}
