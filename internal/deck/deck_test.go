package deck

import (
	"sync"
	"testing"

	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckSwipe(t *testing.T) {
	d := New()
	d.Replace(stackOf("A", "B", "C"))

	t.Run("short drag snaps back", func(t *testing.T) {
		res := d.Swipe("A", 40)
		assert.False(t, res.Committed)
		assert.Equal(t, []string{"A", "B", "C"}, models.ProductIDs(res.Stack))
	})

	t.Run("only the top card is draggable", func(t *testing.T) {
		res := d.Swipe("B", 150)
		assert.False(t, res.Committed)
		assert.Equal(t, []string{"A", "B", "C"}, models.ProductIDs(d.Products()))
	})

	t.Run("committed swipe rotates top to back", func(t *testing.T) {
		res := d.Swipe("A", -150)
		assert.True(t, res.Committed)
		assert.Equal(t, []string{"B", "C", "A"}, models.ProductIDs(res.Stack))
	})

	t.Run("stale swipe on rotated card is a no-op", func(t *testing.T) {
		res := d.Swipe("A", 150)
		assert.False(t, res.Committed)
		assert.Equal(t, []string{"B", "C", "A"}, models.ProductIDs(d.Products()))
	})
}

func TestDeckReplace(t *testing.T) {
	d := New()
	assert.Zero(t, d.Version())

	v1 := d.Replace(stackOf("A", "B", "A", "C"))
	assert.Equal(t, uint64(1), v1)
	assert.Equal(t, []string{"A", "B", "C"}, models.ProductIDs(d.Products()))

	d.Swipe("A", 200)
	v2 := d.Replace(stackOf("C", "D"))
	assert.Equal(t, uint64(2), v2)
	assert.Equal(t, []string{"C", "D"}, models.ProductIDs(d.Products()))

	p, ok := d.Lookup("D")
	require.True(t, ok)
	assert.Equal(t, "Product D", p.Title)
	_, ok = d.Lookup("A")
	assert.False(t, ok)
}

func TestDeckConcurrentSwipes(t *testing.T) {
	d := New()
	d.Replace(stackOf("A", "B", "C", "D"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			top, _ := Top(d.Products())
			d.Swipe(top.ID, 120)
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, models.ProductIDs(d.Products()))
	assert.Len(t, d.Products(), 4)
}
