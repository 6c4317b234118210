package subs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/pkg/logger"
)

type MockRemover struct {
	mock.Mock
	done chan string
}

func newMockRemover() *MockRemover {
	return &MockRemover{done: make(chan string, 10)}
}

func (m *MockRemover) RemoveSubRole(ctx context.Context, contract *models.SubContract) error {
	args := m.Called(ctx, contract)
	m.done <- contract.Key()
	return args.Error(0)
}

func quietLogger() *logger.Logger {
	return logger.NewWithOutput("error", io.Discard)
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case key := <-ch:
		return key
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sub removal")
		return ""
	}
}

func TestScheduler_FiresAndDeletes(t *testing.T) {
	store, err := storage.NewSubStorage(t.TempDir())
	require.NoError(t, err)
	remover := newMockRemover()
	remover.On("RemoveSubRole", mock.Anything, mock.Anything).Return(nil)

	s := NewScheduler(store, remover, quietLogger())
	defer s.Stop()

	contract := &models.SubContract{PlayerID: "p1", TeamName: "Kings", RoleID: "r", ExpiresAt: time.Now().Add(20 * time.Millisecond)}
	require.NoError(t, s.Schedule(contract))

	assert.Equal(t, "p1:Kings", waitFor(t, remover.done))
	assert.Eventually(t, func() bool {
		all, _ := store.All()
		return len(all) == 0
	}, time.Second, 10*time.Millisecond)
	remover.AssertExpectations(t)
}

func TestScheduler_FailedRemovalKeepsRecord(t *testing.T) {
	store, err := storage.NewSubStorage(t.TempDir())
	require.NoError(t, err)
	remover := newMockRemover()
	remover.On("RemoveSubRole", mock.Anything, mock.Anything).Return(errors.New("missing permissions"))

	s := NewScheduler(store, remover, quietLogger())
	defer s.Stop()

	require.NoError(t, s.Schedule(&models.SubContract{PlayerID: "p1", TeamName: "Kings", ExpiresAt: time.Now()}))
	waitFor(t, remover.done)

	// Give fire a moment to return
	time.Sleep(20 * time.Millisecond)
	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestScheduler_Rehydrate(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewSubStorage(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(&models.SubContract{PlayerID: "past", TeamName: "Kings", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, store.Put(&models.SubContract{PlayerID: "future", TeamName: "Astro", ExpiresAt: time.Now().Add(time.Hour)}))

	remover := newMockRemover()
	remover.On("RemoveSubRole", mock.Anything, mock.MatchedBy(func(c *models.SubContract) bool {
		return c.PlayerID == "past"
	})).Return(nil)

	s := NewScheduler(store, remover, quietLogger())
	n, err := s.Rehydrate()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "past:Kings", waitFor(t, remover.done))
	assert.Eventually(t, func() bool { return s.Armed() == 1 }, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Equal(t, 0, s.Armed())
	remover.AssertNotCalled(t, "RemoveSubRole", mock.Anything, mock.MatchedBy(func(c *models.SubContract) bool {
		return c.PlayerID == "future"
	}))
}

func TestScheduler_RescheduleReplacesTimer(t *testing.T) {
	store, err := storage.NewSubStorage(t.TempDir())
	require.NoError(t, err)
	remover := newMockRemover()

	s := NewScheduler(store, remover, quietLogger())
	defer s.Stop()

	c := &models.SubContract{PlayerID: "p1", TeamName: "Kings", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.Schedule(c))
	c2 := *c
	c2.ExpiresAt = time.Now().Add(2 * time.Hour)
	require.NoError(t, s.Schedule(&c2))

	assert.Equal(t, 1, s.Armed())
	all, err := store.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].ExpiresAt.Equal(c2.ExpiresAt))
}
