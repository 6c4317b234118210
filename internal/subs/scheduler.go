// Package subs ends sub contracts on time by removing the borrowed team role.
package subs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/storage"
	"github.com/qrls/qrls-bot/pkg/logger"
)

// Store persists contracts across restarts
type Store interface {
	All() ([]*models.SubContract, error)
	Put(s *models.SubContract) error
	Delete(key string) error
}

// Remover takes the team role back when a contract ends
type Remover interface {
	RemoveSubRole(ctx context.Context, contract *models.SubContract) error
}

type Scheduler struct {
	store   Store
	remover Remover
	logger  *logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	timers  map[string]*time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	pending sync.WaitGroup
}

func NewScheduler(store Store, remover Remover, log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:   store,
		remover: remover,
		logger:  log,
		now:     time.Now,
		timers:  make(map[string]*time.Timer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Schedule persists contract and arms its expiry timer. Rescheduling the same
// player and team replaces the earlier timer.
func (s *Scheduler) Schedule(contract *models.SubContract) error {
	if err := s.store.Put(contract); err != nil {
		return err
	}
	s.arm(contract)
	return nil
}

// Rehydrate re-arms every stored contract. Contracts that ended while the bot
// was down fire immediately.
func (s *Scheduler) Rehydrate() (int, error) {
	contracts, err := s.store.All()
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return 0, err
	}
	if err != nil {
		s.logger.Warn("Sub contracts file was unreadable, starting empty:", err)
	}
	for _, c := range contracts {
		s.arm(c)
	}
	return len(contracts), nil
}

func (s *Scheduler) arm(contract *models.SubContract) {
	key := contract.Key()
	delay := contract.ExpiresAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	c := *contract
	s.timers[key] = time.AfterFunc(delay, func() { s.fire(&c) })
	s.logger.Debugf("Sub contract %s armed for %s", key, delay.Round(time.Second))
}

func (s *Scheduler) fire(contract *models.SubContract) {
	key := contract.Key()

	s.mu.Lock()
	delete(s.timers, key)
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.pending.Add(1)
	s.mu.Unlock()
	defer s.pending.Done()

	if err := s.remover.RemoveSubRole(s.ctx, contract); err != nil {
		// Keep the record so the next start retries
		s.logger.Error("Failed to end sub contract", key+":", err)
		return
	}
	if err := s.store.Delete(key); err != nil {
		s.logger.Error("Failed to delete sub contract", key+":", err)
	}
	s.logger.Info("Sub contract ended:", key)
}

// Armed returns the number of contracts waiting to fire
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every timer and waits for removals already running
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()
	s.pending.Wait()
}
