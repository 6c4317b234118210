package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid() [][]string {
	return [][]string{
		{"discord_id", "nickname", "salary", "team", "captain"},
		{"100", "Ace", "1,200", "Kings", "TRUE"},
		{" 101 ", "Bolt", "800", "kings ", "FALSE"},
		{"102", "Comet", "500", "Free Agent"},
		{"", "blank row"},
		{"103", "Dash", "$700", "Astro", "true"},
		{"104", "Echo", "x", "Waivers", "FALSE"},
		{"105", "Fern", "300", "Retired", "FALSE"},
	}
}

func TestParseRoster(t *testing.T) {
	r := ParseRoster(testGrid())

	assert.True(t, r.HeaderValid())
	require.Len(t, r.Members, 6)

	m, ok := r.Find("101")
	require.True(t, ok)
	assert.Equal(t, "Bolt", m.Nickname)
	assert.Equal(t, 3, m.Row)

	m, ok = r.Find("103")
	require.True(t, ok)
	assert.Equal(t, 6, m.Row, "blank rows still occupy a sheet row")
	assert.True(t, m.Captain)

	_, ok = r.Find("999")
	assert.False(t, ok)
}

func TestRoster_HeaderValid(t *testing.T) {
	r := ParseRoster([][]string{{"id", "name"}})
	assert.False(t, r.HeaderValid())

	r = ParseRoster([][]string{{"Discord_ID", " nickname", "SALARY", "team", "captain", "notes"}})
	assert.True(t, r.HeaderValid())
}

func TestRoster_TeamCountAndCaptain(t *testing.T) {
	r := ParseRoster(testGrid())

	assert.Equal(t, 2, r.TeamCount("Kings"))
	assert.Equal(t, 1, r.TeamCount("ASTRO"))
	assert.Equal(t, 0, r.TeamCount("Armada"))

	c, ok := r.CaptainOf("kings")
	require.True(t, ok)
	assert.Equal(t, "100", c.DiscordID)

	_, ok = r.CaptainOf("Armada")
	assert.False(t, ok)

	assert.True(t, r.IsCaptain("100"))
	assert.False(t, r.IsCaptain("101"))
	assert.False(t, r.IsCaptain("999"))
}

func TestMember_States(t *testing.T) {
	r := ParseRoster(testGrid())

	fa, _ := r.Find("102")
	assert.True(t, fa.IsFreeAgent())
	assert.False(t, fa.Captain, "missing captain column reads as FALSE")

	w, _ := r.Find("104")
	assert.True(t, w.IsOnWaivers())

	ret, _ := r.Find("105")
	assert.True(t, ret.IsRetired())
}

func TestMember_SalaryValue(t *testing.T) {
	r := ParseRoster(testGrid())

	m, _ := r.Find("100")
	v, ok := m.SalaryValue()
	assert.True(t, ok)
	assert.Equal(t, 1200, v)

	m, _ = r.Find("103")
	v, ok = m.SalaryValue()
	assert.True(t, ok)
	assert.Equal(t, 700, v)

	m, _ = r.Find("104")
	_, ok = m.SalaryValue()
	assert.False(t, ok)
}

func TestMember_Values(t *testing.T) {
	m := Member{DiscordID: "1", Nickname: "n", Salary: "5", Team: "Kings", Captain: true}
	assert.Equal(t, []string{"1", "n", "5", "Kings", "TRUE"}, m.Values())
}

func TestIsRealTeam(t *testing.T) {
	assert.True(t, IsRealTeam("Kings"))
	assert.False(t, IsRealTeam("free agent"))
	assert.False(t, IsRealTeam(" WAIVERS "))
	assert.False(t, IsRealTeam("Retired"))
	assert.False(t, IsRealTeam(""))
}

func TestRoster_Helpers(t *testing.T) {
	r := ParseRoster(testGrid())

	assert.Equal(t, []string{"Astro", "Kings"}, r.Teams())
	assert.Equal(t, 2000, r.Payroll("Kings"))
	assert.Len(t, r.TeamMembers("Kings"), 2)
	assert.Len(t, r.SearchByNickname("o"), 3)
	assert.Nil(t, r.SearchByNickname(" "))
	assert.Len(t, r.GroupByTeam()["Waivers"], 1)
}

func TestDiffRosters(t *testing.T) {
	before := ParseRoster(testGrid())
	after := ParseRoster([][]string{
		{"discord_id", "nickname", "salary", "team", "captain"},
		{"100", "Ace", "1,200", "KINGS", "TRUE"},
		{"101", "Bolt", "800", "Astro", "FALSE"},
		{"102", "Comet", "500", "Free Agent"},
		{"103", "Dash", "$700", "Astro", "true"},
		{"104", "Echo", "x", "Free Agent", "FALSE"},
		{"106", "Gale", "400", "Waivers", "FALSE"},
	})

	changes := DiffRosters(before, after)
	require.Len(t, changes, 4)

	assert.Equal(t, RosterChange{DiscordID: "101", Nickname: "Bolt", OldTeam: "kings", NewTeam: "Astro"}, changes[0])
	assert.Equal(t, RosterChange{DiscordID: "104", Nickname: "Echo", OldTeam: "Waivers", NewTeam: "Free Agent"}, changes[1])
	assert.True(t, changes[2].Removed)
	assert.Equal(t, "105", changes[2].DiscordID)
	assert.True(t, changes[3].Added)
	assert.Equal(t, "Waivers", changes[3].NewTeam)
}

func TestDiffRosters_NilBaseline(t *testing.T) {
	assert.Len(t, DiffRosters(nil, ParseRoster(testGrid())), 6)
	assert.Empty(t, DiffRosters(nil, nil))
}
