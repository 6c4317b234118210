package models

import (
	"strconv"
	"strings"
)

// Sheet column indexes (0-based) of the roster worksheet
const (
	ColDiscordID = iota // A
	ColNickname         // B
	ColSalary           // C
	ColTeam             // D
	ColCaptain          // E
)

// Special values of the Team column. None of them is a real team.
const (
	TeamFreeAgent = "Free Agent"
	TeamWaivers   = "Waivers"
	TeamRetired   = "Retired"
)

// MaxRosterSize is the most players a team may carry.
const MaxRosterSize = 4

// RosterHeaders is the expected first row of the roster worksheet.
var RosterHeaders = []string{"discord_id", "nickname", "salary", "team", "captain"}

// Member is one row of the roster worksheet
type Member struct {
	DiscordID string // Column A
	Nickname  string // Column B
	Salary    string // Column C
	Team      string // Column D
	Captain   bool   // Column E - TRUE/FALSE
	Row       int    // 1-based sheet row number
}

// ParseMemberRow parses a sheet row. Rows without a Discord ID return nil.
func ParseMemberRow(row []string, rowNumber int) *Member {
	id := cell(row, ColDiscordID)
	if id == "" {
		return nil
	}
	return &Member{
		DiscordID: id,
		Nickname:  cell(row, ColNickname),
		Salary:    cell(row, ColSalary),
		Team:      cell(row, ColTeam),
		Captain:   strings.EqualFold(cell(row, ColCaptain), "TRUE"),
		Row:       rowNumber,
	}
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// Values returns the member as a sheet row in column order.
func (m *Member) Values() []string {
	captain := "FALSE"
	if m.Captain {
		captain = "TRUE"
	}
	return []string{m.DiscordID, m.Nickname, m.Salary, m.Team, captain}
}

func (m *Member) IsFreeAgent() bool {
	return SameTeam(m.Team, TeamFreeAgent)
}

func (m *Member) IsOnWaivers() bool {
	return SameTeam(m.Team, TeamWaivers)
}

func (m *Member) IsRetired() bool {
	return SameTeam(m.Team, TeamRetired)
}

// SalaryValue parses the salary column, tolerating "$" and "," decoration.
func (m *Member) SalaryValue() (int, bool) {
	s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(m.Salary)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SameTeam compares team names the way the sheet is maintained by hand.
func SameTeam(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsRealTeam reports whether name is an actual team rather than a holding state.
func IsRealTeam(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return !SameTeam(name, TeamFreeAgent) && !SameTeam(name, TeamWaivers) && !SameTeam(name, TeamRetired)
}

// Roster is a snapshot of the roster worksheet
type Roster struct {
	Header  []string
	Members []Member
}

// ParseRoster builds a snapshot from the full worksheet grid. Row 1 is the header.
func ParseRoster(values [][]string) *Roster {
	r := &Roster{}
	for i, row := range values {
		if i == 0 {
			r.Header = row
			continue
		}
		if m := ParseMemberRow(row, i+1); m != nil {
			r.Members = append(r.Members, *m)
		}
	}
	return r
}

// HeaderValid reports whether the header row names the expected columns.
func (r *Roster) HeaderValid() bool {
	if len(r.Header) < len(RosterHeaders) {
		return false
	}
	for i, want := range RosterHeaders {
		if !strings.EqualFold(strings.TrimSpace(r.Header[i]), want) {
			return false
		}
	}
	return true
}

// Find returns the member with the given Discord ID.
func (r *Roster) Find(discordID string) (*Member, bool) {
	discordID = strings.TrimSpace(discordID)
	for i := range r.Members {
		if r.Members[i].DiscordID == discordID {
			return &r.Members[i], true
		}
	}
	return nil, false
}

// TeamCount returns how many players count toward the team's roster.
func (r *Roster) TeamCount(team string) int {
	count := 0
	for _, m := range r.Members {
		if SameTeam(m.Team, team) {
			count++
		}
	}
	return count
}

// CaptainOf returns the first member flagged captain on team.
func (r *Roster) CaptainOf(team string) (*Member, bool) {
	for i := range r.Members {
		if r.Members[i].Captain && SameTeam(r.Members[i].Team, team) {
			return &r.Members[i], true
		}
	}
	return nil, false
}

func (r *Roster) IsCaptain(discordID string) bool {
	m, ok := r.Find(discordID)
	return ok && m.Captain
}
