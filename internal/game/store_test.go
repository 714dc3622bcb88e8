package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
	"github.com/stretchr/testify/assert"
)

func TestStoreWritesRunInCommitOrder(t *testing.T) {
	p := NewPeer(uuid.New(), true, engine.DefaultHouseRules(), nil, nil)

	var (
		mu  sync.Mutex
		got []int
	)
	want := make([]int, 20)
	for i := range want {
		want[i] = i
		p.enqueue("write", func(ctx context.Context) error {
			if i == 0 {
				time.Sleep(20 * time.Millisecond)
			}
			mu.Lock()
			defer mu.Unlock()
			got = append(got, i)
			return nil
		})
	}
	p.Close()

	assert.Equal(t, want, got)
}

func TestCloseDropsLaterWrites(t *testing.T) {
	p := NewPeer(uuid.New(), true, engine.DefaultHouseRules(), nil, nil)
	p.Close()
	p.Close()

	ran := false
	p.enqueue("late", func(context.Context) error {
		ran = true
		return nil
	})
	assert.False(t, ran)
	assert.Nil(t, p.store)
}

func TestStoreErrorsDoNotStopTheQueue(t *testing.T) {
	p := NewPeer(uuid.New(), true, engine.DefaultHouseRules(), nil, nil)

	ran := 0
	p.enqueue("fail", func(context.Context) error { return assert.AnError })
	p.enqueue("ok", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		ran++
		return nil
	})
	p.Close()

	assert.Equal(t, 1, ran)
}
