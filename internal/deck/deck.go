package deck

import (
	"slices"
	"sync"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
)

// SwipeResult describes what a swipe did to the stack.
type SwipeResult struct {
	Committed bool             `json:"committed"`
	Stack     []models.Product `json:"stack"`
}

// Deck holds the current product stack. Every mutation recomputes from the
// latest stack under the lock.
type Deck struct {
	mu      sync.RWMutex
	stack   []models.Product
	version uint64
}

func New() *Deck {
	return &Deck{}
}

// Replace installs a new host snapshot wholesale and returns its version.
func (d *Deck) Replace(products []models.Product) uint64 {
	stack := dedupe(products)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stack = stack
	d.version++
	return d.version
}

// Swipe rotates id to the back when the gesture commits and id is the top
// card. Anything else leaves the stack alone.
func (d *Deck) Swipe(id string, offsetX float64) SwipeResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !IsCommit(offsetX) {
		return SwipeResult{Stack: slices.Clone(d.stack)}
	}
	top, ok := Top(d.stack)
	if !ok || top.ID != id {
		return SwipeResult{Stack: slices.Clone(d.stack)}
	}
	d.stack = RotateToBack(d.stack, id)
	return SwipeResult{Committed: true, Stack: slices.Clone(d.stack)}
}

func (d *Deck) Products() []models.Product {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.stack)
}

func (d *Deck) Lookup(id string) (models.Product, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if idx := indexOf(d.stack, id); idx >= 0 {
		return d.stack[idx], true
	}
	return models.Product{}, false
}

func (d *Deck) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}
