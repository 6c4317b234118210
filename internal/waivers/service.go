// Package waivers tracks dropped players through their waiver window:
// competing claims ranked by waiver order, the claimant's confirmation once
// the window closes, and the admin decision that follows.
package waivers

import (
	"errors"
	"fmt"
	"time"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/storage"
)

var (
	ErrNoWaiver      = errors.New("player has no active waiver")
	ErrWaiverExpired = errors.New("waiver period has ended")
	ErrOutranked     = errors.New("existing claim has higher priority")
	ErrTiedRank      = errors.New("existing claim has equal priority")
	ErrNoClaim       = errors.New("waiver has no claim")
	ErrNotClaimant   = errors.New("only the claiming captain can answer")
	ErrAnswered      = errors.New("claim already answered")
)

// Store persists waiver records keyed by player ID
type Store interface {
	All() ([]*models.Waiver, error)
	Get(playerID string) (*models.Waiver, error)
	Put(w *models.Waiver) error
	Update(playerID string, fn func(w *models.Waiver) error) (*models.Waiver, error)
	Delete(playerID string) error
}

type Service struct {
	store         Store
	now           func() time.Time
	window        time.Duration
	promptTimeout time.Duration
}

type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		now:           time.Now,
		window:        models.WaiverWindow,
		promptTimeout: models.ClaimPromptTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordDrop opens a waiver window for playerID, replacing any earlier record.
func (s *Service) RecordDrop(guildID, playerID, originalTeam, droppedByID string) (*models.Waiver, error) {
	at := s.now().UTC()
	w := &models.Waiver{
		GuildID:      guildID,
		PlayerID:     playerID,
		RequestedAt:  at,
		ExpiresAt:    at.Add(s.window),
		OriginalTeam: originalTeam,
		DroppedByID:  droppedByID,
	}
	if err := s.store.Put(w); err != nil {
		return nil, fmt.Errorf("failed to record waiver: %w", err)
	}
	return w, nil
}

// Get returns the active record for playerID
func (s *Service) Get(playerID string) (*models.Waiver, error) {
	w, err := s.store.Get(playerID)
	if errors.Is(err, storage.ErrWaiverNotFound) {
		return nil, ErrNoWaiver
	}
	return w, err
}

func (s *Service) All() ([]*models.Waiver, error) {
	return s.store.All()
}

type ClaimOutcome int

const (
	ClaimPlaced ClaimOutcome = iota
	ClaimReplaced
)

// ClaimResult describes an accepted claim
type ClaimResult struct {
	Outcome  ClaimOutcome
	Waiver   *models.Waiver
	Replaced *models.Claim
}

// PlaceClaim records claim on playerID's waiver. A claim only displaces an
// existing one with strictly better rank.
func (s *Service) PlaceClaim(playerID string, claim models.Claim) (*ClaimResult, error) {
	now := s.now().UTC()
	if claim.ClaimedAt.IsZero() {
		claim.ClaimedAt = now
	}
	claim.Status = models.ClaimPending
	claim.PromptedAt = nil
	claim.ConfirmedAt = nil
	claim.ApprovalRequested = false

	result := &ClaimResult{Outcome: ClaimPlaced}
	w, err := s.store.Update(playerID, func(w *models.Waiver) error {
		if w.IsExpired(now) {
			return ErrWaiverExpired
		}
		if existing := w.Claim; existing != nil {
			if !claim.Outranks(existing) {
				if existing.EffectiveRank() == claim.EffectiveRank() {
					return ErrTiedRank
				}
				return ErrOutranked
			}
			prev := *existing
			result.Outcome = ClaimReplaced
			result.Replaced = &prev
		}
		c := claim
		w.Claim = &c
		return nil
	})
	if errors.Is(err, storage.ErrWaiverNotFound) {
		return nil, ErrNoWaiver
	}
	if err != nil {
		return nil, err
	}
	result.Waiver = w
	return result, nil
}

type ActionKind int

const (
	// ActionFinalize clears the player to Free Agency and ends the waiver
	ActionFinalize ActionKind = iota
	// ActionPrompt asks the claimant to confirm the claim
	ActionPrompt
	// ActionRequestApproval sends a confirmed claim to the admins
	ActionRequestApproval
)

func (k ActionKind) String() string {
	switch k {
	case ActionFinalize:
		return "finalize"
	case ActionPrompt:
		return "prompt"
	case ActionRequestApproval:
		return "request_approval"
	}
	return "unknown"
}

// Action is the next step for an expired waiver
type Action struct {
	Kind   ActionKind
	Waiver *models.Waiver
	Reason string
}

// Due returns the next step for every expired waiver. Waivers still inside
// their window, and confirmed claims already in front of the admins, have
// none.
func (s *Service) Due() ([]Action, error) {
	now := s.now().UTC()
	all, err := s.store.All()
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return nil, err
	}

	var actions []Action
	for _, w := range all {
		if a, ok := s.next(w, now); ok {
			actions = append(actions, a)
		}
	}
	return actions, err
}

// NextAction re-reads playerID's record and returns its next step, if any.
func (s *Service) NextAction(playerID string) (Action, bool, error) {
	w, err := s.Get(playerID)
	if err != nil {
		return Action{}, false, err
	}
	a, ok := s.next(w, s.now().UTC())
	return a, ok, nil
}

func (s *Service) next(w *models.Waiver, now time.Time) (Action, bool) {
	if !w.IsExpired(now) {
		return Action{}, false
	}
	c := w.Claim
	switch {
	case c == nil:
		return Action{Kind: ActionFinalize, Waiver: w, Reason: "no claim"}, true
	case c.Status == models.ClaimDeclined:
		return Action{Kind: ActionFinalize, Waiver: w, Reason: "claim declined"}, true
	case c.Status == models.ClaimPending:
		return Action{Kind: ActionPrompt, Waiver: w}, true
	case c.Status == models.ClaimPrompted:
		if c.PromptedAt != nil && now.Sub(*c.PromptedAt) >= s.promptTimeout {
			return Action{Kind: ActionFinalize, Waiver: w, Reason: "claim unanswered"}, true
		}
	case c.Status == models.ClaimConfirmed && !c.ApprovalRequested:
		return Action{Kind: ActionRequestApproval, Waiver: w}, true
	}
	return Action{}, false
}

// MarkPrompted records that the claimant has been asked to confirm
func (s *Service) MarkPrompted(playerID string) (*models.Waiver, error) {
	now := s.now().UTC()
	return s.updateClaim(playerID, func(c *models.Claim) error {
		c.Status = models.ClaimPrompted
		c.PromptedAt = &now
		return nil
	})
}

// MarkApprovalRequested records that the admins have been sent the claim
func (s *Service) MarkApprovalRequested(playerID string) (*models.Waiver, error) {
	return s.updateClaim(playerID, func(c *models.Claim) error {
		c.ApprovalRequested = true
		return nil
	})
}

// ApprovalFailed puts a confirmed claim back in the queue so the next sweep
// asks the admins again.
func (s *Service) ApprovalFailed(playerID string) (*models.Waiver, error) {
	return s.updateClaim(playerID, func(c *models.Claim) error {
		c.ApprovalRequested = false
		return nil
	})
}

// Confirm records the claimant's yes
func (s *Service) Confirm(playerID, claimantID string) (*models.Waiver, error) {
	now := s.now().UTC()
	return s.answer(playerID, claimantID, func(c *models.Claim) {
		c.Status = models.ClaimConfirmed
		c.ConfirmedAt = &now
	})
}

// Decline records the claimant's no
func (s *Service) Decline(playerID, claimantID string) (*models.Waiver, error) {
	now := s.now().UTC()
	return s.answer(playerID, claimantID, func(c *models.Claim) {
		c.Status = models.ClaimDeclined
		c.ConfirmedAt = &now
	})
}

func (s *Service) answer(playerID, claimantID string, apply func(c *models.Claim)) (*models.Waiver, error) {
	return s.updateClaim(playerID, func(c *models.Claim) error {
		if c.ClaimedByID != claimantID {
			return ErrNotClaimant
		}
		if c.Status == models.ClaimConfirmed || c.Status == models.ClaimDeclined {
			return ErrAnswered
		}
		apply(c)
		return nil
	})
}

func (s *Service) updateClaim(playerID string, fn func(c *models.Claim) error) (*models.Waiver, error) {
	w, err := s.store.Update(playerID, func(w *models.Waiver) error {
		if w.Claim == nil {
			return ErrNoClaim
		}
		return fn(w.Claim)
	})
	if errors.Is(err, storage.ErrWaiverNotFound) {
		return nil, ErrNoWaiver
	}
	return w, err
}

// Resolve ends playerID's waiver
func (s *Service) Resolve(playerID string) error {
	return s.store.Delete(playerID)
}
