package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/qrls/qrls-bot/internal/cache"
	"github.com/qrls/qrls-bot/internal/models"
)

// WaiverOrderRange holds up to 16 teams as "team, rank" rows.
const WaiverOrderRange = "A1:B16"

// RosterSheet reads and writes the roster worksheet and the waiver order tab
type RosterSheet struct {
	roster      Grid
	waiverOrder Grid
}

func NewRosterSheet(roster, waiverOrder Grid) *RosterSheet {
	return &RosterSheet{roster: roster, waiverOrder: waiverOrder}
}

// Roster fetches a fresh snapshot of the whole roster worksheet.
func (s *RosterSheet) Roster(ctx context.Context) (*models.Roster, error) {
	values, err := s.roster.GetAllValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return models.ParseRoster(values), nil
}

// LoadInitialData refreshes the cached roster snapshot
func (s *RosterSheet) LoadInitialData(ctx context.Context, c *cache.Cache) error {
	roster, err := s.Roster(ctx)
	if err != nil {
		return err
	}
	c.SetRoster(roster)
	return nil
}

func (s *RosterSheet) SetTeam(ctx context.Context, row int, team string) error {
	return s.roster.UpdateCell(ctx, row, models.ColTeam+1, team)
}

func (s *RosterSheet) SetCaptain(ctx context.Context, row int, captain bool) error {
	value := "FALSE"
	if captain {
		value = "TRUE"
	}
	return s.roster.UpdateCell(ctx, row, models.ColCaptain+1, value)
}

func (s *RosterSheet) SetSalary(ctx context.Context, row int, salary int) error {
	return s.roster.UpdateCell(ctx, row, models.ColSalary+1, strconv.Itoa(salary))
}

func (s *RosterSheet) SetNickname(ctx context.Context, row int, nickname string) error {
	return s.roster.UpdateCell(ctx, row, models.ColNickname+1, nickname)
}

// Upsert writes m over its existing row, or appends it when the Discord ID is new.
func (s *RosterSheet) Upsert(ctx context.Context, m models.Member) (appended bool, err error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return false, err
	}
	if existing, ok := roster.Find(m.DiscordID); ok {
		if err := s.roster.UpdateRow(ctx, existing.Row, m.Values()); err != nil {
			return false, fmt.Errorf("failed to update row %d: %w", existing.Row, err)
		}
		return false, nil
	}
	if err := s.roster.AppendRow(ctx, m.Values()); err != nil {
		return false, err
	}
	return true, nil
}

// WaiverOrder maps each team to its waiver rank. Rank 1 picks first.
func (s *RosterSheet) WaiverOrder(ctx context.Context) (WaiverOrder, error) {
	if s.waiverOrder == nil {
		return nil, fmt.Errorf("waiver order worksheet not configured")
	}
	values, err := s.waiverOrder.GetRange(ctx, WaiverOrderRange)
	if err != nil {
		return nil, fmt.Errorf("failed to load waiver order: %w", err)
	}
	return ParseWaiverOrder(values), nil
}

// WaiverOrder is team name -> rank
type WaiverOrder map[string]int

// ParseWaiverOrder skips rows whose rank is not a number, such as a header.
func ParseWaiverOrder(values [][]string) WaiverOrder {
	order := make(WaiverOrder)
	for _, row := range values {
		if len(row) < 2 {
			continue
		}
		team := strings.TrimSpace(row[0])
		rank, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if team == "" || err != nil {
			continue
		}
		order[team] = rank
	}
	return order
}

// Rank looks up a team ignoring case. Missing teams get models.MissingRank.
func (o WaiverOrder) Rank(team string) (int, bool) {
	for name, rank := range o {
		if models.SameTeam(name, team) {
			return rank, true
		}
	}
	return models.MissingRank, false
}
