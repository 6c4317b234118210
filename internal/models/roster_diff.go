package models

import "sort"

// RosterChange is a difference between two roster snapshots for one member
type RosterChange struct {
	DiscordID string
	Nickname  string
	OldTeam   string
	NewTeam   string
	Added     bool
	Removed   bool
}

// DiffRosters reports members whose team changed, appeared or disappeared
// between two snapshots, ordered by Discord ID.
func DiffRosters(before, after *Roster) []RosterChange {
	old := make(map[string]Member)
	if before != nil {
		for _, m := range before.Members {
			old[m.DiscordID] = m
		}
	}

	var changes []RosterChange
	seen := make(map[string]bool)
	if after != nil {
		for _, m := range after.Members {
			seen[m.DiscordID] = true
			prev, ok := old[m.DiscordID]
			switch {
			case !ok:
				changes = append(changes, RosterChange{DiscordID: m.DiscordID, Nickname: m.Nickname, NewTeam: m.Team, Added: true})
			case !SameTeam(prev.Team, m.Team):
				changes = append(changes, RosterChange{DiscordID: m.DiscordID, Nickname: m.Nickname, OldTeam: prev.Team, NewTeam: m.Team})
			}
		}
	}
	for id, m := range old {
		if !seen[id] {
			changes = append(changes, RosterChange{DiscordID: id, Nickname: m.Nickname, OldTeam: m.Team, Removed: true})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].DiscordID < changes[j].DiscordID
	})
	return changes
}
