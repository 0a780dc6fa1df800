package tracer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFastPath(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Current())
	assert.Equal(t, 0, r.Len())

	s := NewState()
	assert.Nil(t, r.Set(s))
	assert.Same(t, s, r.Current())
	assert.Equal(t, 1, r.Len())

	assert.Same(t, s, r.Set(nil))
	assert.Nil(t, r.Current())
	assert.Equal(t, 0, r.Len())
}

func TestRegistryPerGoroutine(t *testing.T) {
	r := NewRegistry()
	mine := NewState()
	r.Set(mine)
	defer r.Set(nil)

	var (
		wg    sync.WaitGroup
		other *State
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = r.Current()
	}()
	wg.Wait()

	assert.Nil(t, other, "sessions must not leak across goroutines")
	assert.Same(t, mine, r.Current())
}

func TestRegistryInstall(t *testing.T) {
	r := NewRegistry()
	first := NewState()

	uninstall, err := r.install(first)
	require.NoError(t, err)

	_, err = r.install(NewState())
	assert.ErrorIs(t, err, ErrNestedTrace)

	// Traced code swapping sessions must not survive the trace.
	r.Set(NewState())
	uninstall()
	assert.Nil(t, r.Current())
	assert.Equal(t, 0, r.Len())
}

func TestContextState(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))

	s := NewState()
	ctx = WithState(ctx, s)
	assert.Same(t, s, FromContext(ctx))
	assert.Nil(t, FromContext(WithState(ctx, nil)))
}
