package csvgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSet(t *testing.T) {
	ctx := context.Background()

	ix, err := New(ctx, writeCityTable(t), decodeCity)
	require.NoError(t, err)

	odd := func(c cityRecord) bool { return c.ID%2 == 1 }
	big := func(c cityRecord) bool { return c.ID >= 3 }

	// naive recomputes a predicate combination with a plain scan.
	naive := func(pred func(cityRecord) bool) []uint32 {
		var out []uint32
		for i, rec := range ix.Records() {
			if pred(rec) {
				out = append(out, uint32(i))
			}
		}
		return out
	}

	t.Run("SelectMatchesNaiveFilter", func(t *testing.T) {
		assert.Equal(t, naive(odd), ix.Select(odd).Positions())
		assert.Equal(t, naive(big), ix.Select(big).Positions())
	})

	t.Run("And", func(t *testing.T) {
		got := ix.Select(odd).And(ix.Select(big))
		want := naive(func(c cityRecord) bool { return odd(c) && big(c) })
		assert.Equal(t, want, got.Positions())
	})

	t.Run("Or", func(t *testing.T) {
		got := ix.Select(odd).Or(ix.Select(big))
		want := naive(func(c cityRecord) bool { return odd(c) || big(c) })
		assert.Equal(t, want, got.Positions())
	})

	t.Run("AndNot", func(t *testing.T) {
		got := ix.Select(odd).AndNot(ix.Select(big))
		want := naive(func(c cityRecord) bool { return odd(c) && !big(c) })
		assert.Equal(t, want, got.Positions())
	})

	t.Run("CombinatorsLeaveOperandsUnchanged", func(t *testing.T) {
		a := ix.Select(odd)
		b := ix.Select(big)
		before := a.Positions()

		_ = a.And(b)
		_ = a.Or(b)
		_ = a.AndNot(b)
		assert.Equal(t, before, a.Positions())
	})

	t.Run("ContainsAndCardinality", func(t *testing.T) {
		set := ix.Select(big) // ids 3, 5, 8 at positions 2, 3, 4

		assert.Equal(t, uint64(3), set.Cardinality())
		assert.False(t, set.IsEmpty())
		assert.False(t, set.Contains(0))
		assert.False(t, set.Contains(1))
		assert.True(t, set.Contains(2))
		assert.True(t, set.Contains(4))
		assert.False(t, set.Contains(5))
		assert.False(t, set.Contains(-1))
	})

	t.Run("EmptySelection", func(t *testing.T) {
		none := ix.Select(func(cityRecord) bool { return false })
		assert.True(t, none.IsEmpty())
		assert.Equal(t, uint64(0), none.Cardinality())
		assert.Empty(t, none.Positions())
	})
}
