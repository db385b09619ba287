package pool

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrideVRInc/VRCAuthProxy/internal/vrchat"
)

func session(name string) *vrchat.Session {
	return &vrchat.Session{Username: name}
}

func TestActive_EmptyPool(t *testing.T) {
	p := New()
	assert.Nil(t, p.Active())
	assert.Equal(t, 0, p.Len())
}

func TestRotate_EmptyPoolIsNoop(t *testing.T) {
	p := New()
	assert.NotPanics(t, func() { p.Rotate() })
	assert.Nil(t, p.Active())
}

func TestRotate_SingleEntryIsIdempotent(t *testing.T) {
	p := New()
	only := session("solo")
	p.Add(only)

	p.Rotate()
	assert.Same(t, only, p.Active())
}

func TestRotate_AdvancesHead(t *testing.T) {
	p := New()
	first := session("first")
	second := session("second")
	p.Add(first)
	p.Add(second)

	require.Same(t, first, p.Active())
	p.Rotate()
	assert.Same(t, second, p.Active())
}

func TestRotate_IsCyclicPermutation(t *testing.T) {
	p := New()
	var order []*vrchat.Session
	for i := 0; i < 5; i++ {
		s := session(fmt.Sprintf("account-%d", i))
		order = append(order, s)
		p.Add(s)
	}

	// N rotations return the pool to its original order.
	for i := 0; i < len(order); i++ {
		assert.Same(t, order[i], p.Active())
		p.Rotate()
	}
	assert.Same(t, order[0], p.Active())
}

func TestActive_DoesNotMutateOrder(t *testing.T) {
	p := New()
	first := session("first")
	p.Add(first)
	p.Add(session("second"))

	for i := 0; i < 10; i++ {
		assert.Same(t, first, p.Active())
	}
}

func TestAdd_ConcurrentLogins(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Add(session(fmt.Sprintf("account-%d", i)))
		}(i)
	}

	// Readers and rotations race with the adds; none of this may panic or
	// lose a session.
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Active()
			p.Rotate()
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, p.Len())
}
