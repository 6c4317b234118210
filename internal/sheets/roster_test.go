package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/cache"
	"github.com/qrls/qrls-bot/internal/models"
)

func rosterGrid() *MemoryGrid {
	return NewMemoryGrid([][]string{
		{"discord_id", "nickname", "salary", "team", "captain"},
		{"100", "Ace", "1200", "Kings", "TRUE"},
		{"101", "Bolt", "800", "Free Agent", "FALSE"},
	})
}

func orderGrid() *MemoryGrid {
	return NewMemoryGrid([][]string{
		{"Team", "Rank"},
		{"Kings", "2"},
		{"Astro", "1"},
		{"Armada", "n/a"},
	})
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", ColumnLetter(1))
	assert.Equal(t, "E", ColumnLetter(5))
	assert.Equal(t, "Z", ColumnLetter(26))
	assert.Equal(t, "AB", ColumnLetter(28))
	assert.Equal(t, "D7", CellRef(7, 4))
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'Sheet1'", quoteTitle("Sheet1"))
	assert.Equal(t, "'Bob''s'", quoteTitle("Bob's"))
}

func TestRosterSheet_SetCells(t *testing.T) {
	ctx := context.Background()
	grid := rosterGrid()
	rs := NewRosterSheet(grid, orderGrid())

	require.NoError(t, rs.SetTeam(ctx, 3, "Kings"))
	require.NoError(t, rs.SetCaptain(ctx, 3, true))
	require.NoError(t, rs.SetSalary(ctx, 3, 950))
	require.NoError(t, rs.SetNickname(ctx, 3, "Bolty"))

	roster, err := rs.Roster(ctx)
	require.NoError(t, err)
	m, ok := roster.Find("101")
	require.True(t, ok)
	assert.Equal(t, "Kings", m.Team)
	assert.True(t, m.Captain)
	assert.Equal(t, "950", m.Salary)
	assert.Equal(t, "Bolty", m.Nickname)
	assert.Equal(t, 2, roster.TeamCount("Kings"))
}

func TestRosterSheet_Upsert(t *testing.T) {
	ctx := context.Background()
	grid := rosterGrid()
	rs := NewRosterSheet(grid, nil)

	appended, err := rs.Upsert(ctx, models.Member{DiscordID: "100", Nickname: "Ace2", Salary: "1", Team: "Kings", Captain: true})
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, "Ace2", grid.Cell(2, 2))

	appended, err = rs.Upsert(ctx, models.Member{DiscordID: "200", Nickname: "New", Salary: "0", Team: models.TeamWaivers})
	require.NoError(t, err)
	assert.True(t, appended)
	assert.Equal(t, "Waivers", grid.Cell(4, 4))
	assert.Equal(t, "FALSE", grid.Cell(4, 5))
}

func TestRosterSheet_WaiverOrder(t *testing.T) {
	rs := NewRosterSheet(rosterGrid(), orderGrid())

	order, err := rs.WaiverOrder(context.Background())
	require.NoError(t, err)
	assert.Len(t, order, 2)

	rank, ok := order.Rank("kings")
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	rank, ok = order.Rank("Armada")
	assert.False(t, ok)
	assert.Equal(t, models.MissingRank, rank)
}

func TestRosterSheet_WaiverOrderMissingTab(t *testing.T) {
	rs := NewRosterSheet(rosterGrid(), nil)
	_, err := rs.WaiverOrder(context.Background())
	assert.Error(t, err)
}

func TestRosterSheet_LoadInitialData(t *testing.T) {
	c := cache.New(time.Minute)
	rs := NewRosterSheet(rosterGrid(), nil)

	require.NoError(t, rs.LoadInitialData(context.Background(), c))
	roster, ok := c.GetRoster()
	require.True(t, ok)
	assert.Len(t, roster.Members, 2)
}

func TestMemoryGrid_GetRange(t *testing.T) {
	g := NewMemoryGrid([][]string{
		{"a", "1", "x"},
		{"b", "2"},
		{"c"},
	})
	rows, err := g.GetRange(context.Background(), "A1:B16")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}, {"c"}}, rows)
}
