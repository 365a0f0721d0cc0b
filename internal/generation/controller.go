package generation

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Controller runs the per-product generation state machine. At most one run
// is in flight per product id; different products run independently.
//
// The state map is copy-on-write: every update builds a new map with one key
// replaced, so maps handed out by States are never mutated afterwards.
type Controller struct {
	synth        Synthesizer
	pool         *workerpool.WorkerPool
	preloadLimit int
	metrics      *prometheus.HistogramVec

	// poolMu orders Trigger submissions before Close stops the pool.
	poolMu sync.RWMutex
	closed bool

	mu     sync.Mutex
	states map[string]models.GenerationState
	modal  models.ModalState
	seq    uint64
}

func NewController(cfg *config.Config, synth Synthesizer) (*Controller, error) {
	metrics, err := util.GetHistogramVec("video_generation_duration_seconds", "strategy", "outcome")
	if err != nil {
		return nil, err
	}
	return &Controller{
		synth:        synth,
		pool:         workerpool.New(cfg.Generation.Workers),
		preloadLimit: cfg.Generation.PreloadLimit,
		metrics:      metrics,
		states:       map[string]models.GenerationState{},
	}, nil
}

// Generate runs the chain for product and waits for it to settle. A
// successful run opens the modal for the product. ErrAlreadyLoading is
// returned, without any external call, when a run is in flight.
func (c *Controller) Generate(ctx context.Context, product models.Product) (models.Outcome, error) {
	epoch, err := c.begin(product.ID)
	if err != nil {
		return models.Outcome{}, err
	}
	out := c.run(ctx, product)
	c.settle(ctx, product.ID, epoch, out, true)
	return out, nil
}

// Trigger moves product to Loading and runs the chain on the worker pool.
// The run is detached from ctx cancellation and cannot be cancelled. After
// Close it fails with models.ErrShuttingDown.
func (c *Controller) Trigger(ctx context.Context, product models.Product) (models.GenerationState, error) {
	c.poolMu.RLock()
	defer c.poolMu.RUnlock()
	if c.closed {
		return c.State(product.ID), models.ErrShuttingDown
	}

	epoch, err := c.begin(product.ID)
	if err != nil {
		return c.State(product.ID), err
	}
	runCtx := context.WithoutCancel(ctx)
	c.pool.Submit(func() {
		out := c.run(runCtx, product)
		c.settle(runCtx, product.ID, epoch, out, true)
	})
	return c.State(product.ID), nil
}

// Preload resolves the video of every product up front without touching the
// modal. Products already holding a video or already loading are skipped.
// Failures are recorded per product; only ctx cancellation is returned.
func (c *Controller) Preload(ctx context.Context, products []models.Product) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.preloadLimit)
	for _, p := range products {
		if st := c.State(p.ID); st.Loading || st.VideoURL != "" {
			continue
		}
		epoch, err := c.begin(p.ID)
		if err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				c.settle(ctx, p.ID, epoch, models.Failure(p.ID, models.AsGenerationError(err)), false)
				return err
			}
			out := c.run(gctx, p)
			c.settle(ctx, p.ID, epoch, out, false)
			return nil
		})
	}
	return g.Wait()
}

// Ready reports whether every id has a resolved video. It is vacuously true
// for no ids.
func (c *Controller) Ready(ids []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if c.states[id].VideoURL == "" {
			return false
		}
	}
	return true
}

func (c *Controller) State(id string) models.GenerationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.states[id]; ok {
		return st
	}
	return models.GenerationState{Phase: models.PhaseIdle}
}

// States returns the current state map. Callers must not modify it.
func (c *Controller) States() map[string]models.GenerationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states
}

func (c *Controller) Modal() models.ModalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// OpenModal binds the modal to a product that already has a video.
func (c *Controller) OpenModal(id string) (models.ModalState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.states[id].VideoURL == "" {
		return c.modal, models.ErrNoVideo
	}
	c.modal = models.ModalState{Open: true, ProductID: id}
	return c.modal, nil
}

func (c *Controller) CloseModal() models.ModalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = models.ModalState{}
	return c.modal
}

// Retain keeps state only for the given ids. Runs in flight for dropped ids
// are ignored when they settle, and a modal bound to a dropped id closes.
func (c *Controller) Retain(ids []string) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := make(map[string]models.GenerationState, len(c.states))
	for id, st := range c.states {
		if _, ok := keep[id]; ok {
			next[id] = st
		}
	}
	c.states = next
	if _, ok := keep[c.modal.ProductID]; c.modal.Open && !ok {
		c.modal = models.ModalState{}
	}
}

// Close rejects further triggers and waits for queued runs to finish.
func (c *Controller) Close() {
	c.poolMu.Lock()
	c.closed = true
	c.poolMu.Unlock()
	c.pool.StopWait()
}

func (c *Controller) begin(id string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.states[id]
	if st.Loading {
		return 0, models.ErrAlreadyLoading
	}
	c.seq++
	c.replace(id, st.Begin(c.seq))
	return c.seq, nil
}

func (c *Controller) run(ctx context.Context, product models.Product) models.Outcome {
	ctx = log.With(ctx, "product_id", product.ID, "strategy", c.synth.Name())
	start := time.Now()

	url, err := c.synth.SynthesizeVideo(ctx, product)
	url = strings.TrimSpace(url)
	if err == nil && url == "" {
		err = models.NewGenerationError(models.KindNoMediaProduced, "no video url returned")
	}

	var out models.Outcome
	label := "success"
	if err != nil {
		ge := models.AsGenerationError(err)
		out = models.Failure(product.ID, ge)
		label = string(ge.Kind)
		log.Warnw(ctx, "video generation failed", "kind", ge.Kind, "error", err)
	} else {
		out = models.Success(product.ID, url)
		log.Infow(ctx, "video generated", "video_url", url)
	}

	c.metrics.
		WithLabelValues(string(c.synth.Name()), label).
		Observe(time.Since(start).Seconds())
	return out
}

func (c *Controller) settle(ctx context.Context, id string, epoch uint64, out models.Outcome, openModal bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	if !ok || !st.Loading || st.Epoch() != epoch {
		log.Infow(ctx, "discarding stale generation result", "product_id", id)
		return
	}
	c.replace(id, st.Settle(out))
	if out.OK() && openModal {
		c.modal = models.ModalState{Open: true, ProductID: id}
	}
}

// replace must be called with mu held.
func (c *Controller) replace(id string, st models.GenerationState) {
	next := maps.Clone(c.states)
	if next == nil {
		next = map[string]models.GenerationState{}
	}
	next[id] = st
	c.states = next
}
