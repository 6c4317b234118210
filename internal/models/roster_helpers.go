package models

import (
	"sort"
	"strings"
)

// TeamMembers returns the players on a team, in sheet order
func (r *Roster) TeamMembers(team string) []Member {
	var members []Member
	for _, m := range r.Members {
		if SameTeam(m.Team, team) {
			members = append(members, m)
		}
	}
	return members
}

// Teams returns the distinct real team names, sorted
func (r *Roster) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	for _, m := range r.Members {
		if !IsRealTeam(m.Team) {
			continue
		}
		key := strings.ToLower(m.Team)
		if seen[key] {
			continue
		}
		seen[key] = true
		teams = append(teams, m.Team)
	}
	sort.Strings(teams)
	return teams
}

// Payroll sums the parseable salaries of a team
func (r *Roster) Payroll(team string) int {
	total := 0
	for _, m := range r.TeamMembers(team) {
		if v, ok := m.SalaryValue(); ok {
			total += v
		}
	}
	return total
}

// GroupByTeam returns a map of team name to members
func (r *Roster) GroupByTeam() map[string][]Member {
	grouped := make(map[string][]Member)
	for _, m := range r.Members {
		if m.Team != "" {
			grouped[m.Team] = append(grouped[m.Team], m)
		}
	}
	return grouped
}

// SearchByNickname returns members whose nickname contains search
func (r *Roster) SearchByNickname(search string) []Member {
	var results []Member
	searchLower := strings.ToLower(strings.TrimSpace(search))
	if searchLower == "" {
		return nil
	}
	for _, m := range r.Members {
		if strings.Contains(strings.ToLower(m.Nickname), searchLower) {
			results = append(results, m)
		}
	}
	return results
}
