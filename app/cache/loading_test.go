package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadingRegistryReferenceCounting(t *testing.T) {
	reg := NewLoadingRegistry()
	assert.False(t, reg.Loading())

	t1 := reg.Acquire("school:payments")
	t2 := reg.Acquire("school:dashboard")
	assert.True(t, reg.Loading())
	assert.Equal(t, 2, reg.Count())

	t1.Release()
	assert.True(t, reg.Loading(), "one operation still outstanding")
	assert.Equal(t, 1, reg.Count())

	t2.Release()
	assert.False(t, reg.Loading())
	assert.Equal(t, 0, reg.Count())
}

func TestTicketReleaseIdempotent(t *testing.T) {
	reg := NewLoadingRegistry()

	t1 := reg.Acquire("school:payments")
	t2 := reg.Acquire("school:payments")

	t1.Release()
	t1.Release()
	t1.Release()

	assert.Equal(t, 1, reg.Count(), "double release must not mask the other ticket")
	assert.Equal(t, []string{"school:payments"}, reg.Pending())

	t2.Release()
	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, reg.Pending())
}

func TestLoadingRegistryConcurrentAcquireRelease(t *testing.T) {
	reg := NewLoadingRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket := reg.Acquire("region")
			ticket.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Count())
	assert.False(t, reg.Loading())
}
