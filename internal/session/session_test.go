package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func TestCreate_MintsPrefixedID(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create()
	assert.Regexp(t, `^sess_[0-9a-f]{12}$`, sess.ID)
}

func TestGet_ExpiredSessionIsMissAndDeleted(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	sess := s.Create()
	time.Sleep(20 * time.Millisecond)

	assert.Nil(t, s.Get(sess.ID))
	assert.Equal(t, 0, s.Count())
}

func TestGetOrCreate_ReusesValidSession(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create()

	got := s.GetOrCreate(sess.ID)
	assert.Equal(t, sess.ID, got.ID)
}

func TestGetOrCreate_MintsNewWhenAbsent(t *testing.T) {
	s := NewStore(time.Hour)
	got := s.GetOrCreate("does-not-exist")
	assert.NotEqual(t, "does-not-exist", got.ID)
}

func TestAppendMessage_SerializesConcurrentTurns(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s.AppendMessage(sess.ID, domain.Message{Role: domain.RoleUser, Content: "turn"})
		}(i)
	}
	wg.Wait()

	got := s.Get(sess.ID)
	require.NotNil(t, got)
	assert.Len(t, got.Messages, n)
	assert.Equal(t, n, got.TurnCount)
}
