package igcontext

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreSetGetClear(t *testing.T) {
	store := NewStore()
	assert.False(t, store.Get().IsSet(), "fresh store must report no context")

	store.Set(Guide{
		ID:   "who.smart.immunizations",
		URL:  "http://smart.who.int/immunizations",
		Name: "SMARTImmunizations",
	})

	got := store.Get()
	assert.True(t, got.IsSet())
	assert.Equal(t, "who.smart.immunizations", got.ID)
	assert.Equal(t, "http://smart.who.int/immunizations", got.URL)

	store.Clear()
	assert.False(t, store.Get().IsSet(), "cleared store must report no context")
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(Guide{ID: "a", URL: "http://a"})
		}()
		go func() {
			defer wg.Done()
			guide := store.Get()
			// A snapshot is either empty or complete, never torn.
			if guide.ID != "" {
				assert.Equal(t, "http://a", guide.URL)
			}
		}()
	}
	wg.Wait()
}
