package deck

import (
	"math"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
)

// SwipeThreshold is the horizontal drag distance a gesture must exceed to
// count as a swipe. Shorter drags snap back on the client.
const SwipeThreshold = 100.0

// IsCommit reports whether a gesture that ended at offsetX commits a swipe.
func IsCommit(offsetX float64) bool {
	return math.Abs(offsetX) > SwipeThreshold
}

// RotateToBack moves the product with the given id to the end of the stack,
// keeping the relative order of the others. When id is not in the stack the
// input slice is returned as is. The input is never modified.
func RotateToBack(stack []models.Product, id string) []models.Product {
	idx := indexOf(stack, id)
	if idx < 0 {
		return stack
	}
	out := make([]models.Product, 0, len(stack))
	out = append(out, stack[:idx]...)
	out = append(out, stack[idx+1:]...)
	return append(out, stack[idx])
}

// VisiblePair returns the rendered cards in paint order: the first two
// entries of the stack, reversed, so the card beneath comes first and the
// draggable top card (stack[0]) comes last.
func VisiblePair(stack []models.Product) []models.Product {
	n := min(len(stack), 2)
	pair := make([]models.Product, n)
	for i := 0; i < n; i++ {
		pair[n-1-i] = stack[i]
	}
	return pair
}

// Top returns the draggable card, which is the next one to surface.
func Top(stack []models.Product) (models.Product, bool) {
	if len(stack) == 0 {
		return models.Product{}, false
	}
	return stack[0], true
}

func indexOf(stack []models.Product, id string) int {
	for i, p := range stack {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the first occurrence of every id.
func dedupe(products []models.Product) []models.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
