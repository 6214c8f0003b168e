package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreIssueAndConsume(t *testing.T) {
	store := NewStore(10 * time.Minute)

	value, err := store.Issue("github")
	require.NoError(t, err)
	require.NotEmpty(t, value)

	record, ok := store.Consume(value)
	require.True(t, ok)
	assert.Equal(t, "github", record.Provider)
	assert.False(t, record.IssuedAt.IsZero())
	assert.True(t, record.Expiry.After(record.IssuedAt))
}

func TestStoreConsumeIsSingleUse(t *testing.T) {
	store := NewStore(10 * time.Minute)

	value, err := store.Issue("google")
	require.NoError(t, err)

	_, ok := store.Consume(value)
	require.True(t, ok)

	_, ok = store.Consume(value)
	assert.False(t, ok, "second consume of the same state must fail")
}

func TestStoreConsumeUnknownValue(t *testing.T) {
	store := NewStore(10 * time.Minute)

	_, ok := store.Consume("never-issued")
	assert.False(t, ok)
}

func TestStoreConsumeExpired(t *testing.T) {
	store := NewStore(-time.Second)

	value, err := store.Issue("azure")
	require.NoError(t, err)

	_, ok := store.Consume(value)
	assert.False(t, ok, "expired state must be rejected")

	// The record was still removed on first sight.
	_, ok = store.Consume(value)
	assert.False(t, ok)
}

func TestStoreConcurrentConsumeSingleWinner(t *testing.T) {
	store := NewStore(10 * time.Minute)

	value, err := store.Issue("github")
	require.NoError(t, err)

	const racers = 32
	var wg sync.WaitGroup
	var winners sync.Map
	var winnerCount int64

	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			<-start
			if _, ok := store.Consume(value); ok {
				winners.Store(id, true)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	winners.Range(func(_, _ any) bool {
		winnerCount++
		return true
	})
	assert.Equal(t, int64(1), winnerCount, "exactly one racer may consume the state")
}

func TestStoreSweepRemovesOnlyExpired(t *testing.T) {
	store := NewStore(10 * time.Minute)

	fresh, err := store.Issue("github")
	require.NoError(t, err)

	// Plant an already-expired record directly.
	store.records.Store("stale", Record{
		Provider: "google",
		IssuedAt: time.Now().Add(-time.Hour),
		Expiry:   time.Now().Add(-time.Minute),
	})

	removed := store.Sweep()
	assert.Equal(t, 1, removed)

	_, ok := store.Consume(fresh)
	assert.True(t, ok, "unexpired record must survive the sweep")
}
