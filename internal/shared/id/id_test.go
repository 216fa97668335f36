package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := gen.Generate().String()
		require.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
}

func TestGenerateMonotonic(t *testing.T) {
	gen := NewGenerator()

	prev := gen.Generate().String()
	for i := 0; i < 100; i++ {
		next := gen.Generate().String()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestTypedIDs(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		prefix string
	}{
		{"window", NewWindowID().String(), WindowPrefix},
		{"request", NewRequestID().String(), RequestPrefix},
		{"span", NewSpanID().String(), SpanPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.value, tt.prefix+"_"))
			assert.True(t, IsPrefixed(tt.value, tt.prefix))
			assert.False(t, IsPrefixed(tt.value, "other"))
		})
	}
}

func TestConcurrentGeneration(t *testing.T) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[WindowID]bool)
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				wid := NewWindowID()
				mu.Lock()
				ids[wid] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1000)
}
