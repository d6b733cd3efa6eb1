package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "ORD-007", Format(SequenceOrder, 7))
	assert.Equal(t, "CUST-042", Format(SequenceCustomer, 42))
	// La largeur 3 n'est pas un plafond
	assert.Equal(t, "ORD-1000", Format(SequenceOrder, 1000))
	// Séquence inconnue : le nom sert de préfixe
	assert.Equal(t, "invoice-001", Format("invoice", 1))
}

func TestMemoryAllocatorSequential(t *testing.T) {
	alloc := NewMemoryAllocator()
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		id, err := alloc.Next(ctx, SequenceOrder)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%03d", i), id)
	}
}

func TestMemoryAllocatorIndependentSequences(t *testing.T) {
	alloc := NewMemoryAllocator()
	ctx := context.Background()

	id, err := alloc.Next(ctx, SequenceOrder)
	require.NoError(t, err)
	assert.Equal(t, "ORD-001", id)

	id, err = alloc.Next(ctx, SequenceCustomer)
	require.NoError(t, err)
	assert.Equal(t, "CUST-001", id)

	id, err = alloc.Next(ctx, SequenceOrder)
	require.NoError(t, err)
	assert.Equal(t, "ORD-002", id)
}

func TestMemoryAllocatorConcurrent(t *testing.T) {
	alloc := NewMemoryAllocator()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	ids := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.Next(ctx, SequenceOrder)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "identifiant dupliqué: %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	// Pas de trou : le dernier identifiant émis est exactement n
	assert.True(t, seen[Format(SequenceOrder, n)])
}
