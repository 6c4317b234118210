package models

import (
	"fmt"
	"strings"
)

// Matchup is one scheduled game between two teams
type Matchup struct {
	Home string
	Away string
}

// Schedule maps week number to that week's matchups.
// Weeks 21-24 are the preseason tournament.
var Schedule = map[int][]Matchup{
	1: {{"Arctic Assassins", "Clarity United"}, {"Spectres", "Astro"}, {"Armada", "Elite Ink"},
		{"Sappers", "Cyclones"}, {"Mustangs", "Rangers"}, {"Three Rocketeers", "Vibe Clan"},
		{"Kings", "Speed Demons"}, {"Bleacher Boys", "Hammerheads"}},
	2: {{"Bleacher Boys", "Clarity United"}, {"Kings", "Vibe Clan"}, {"Hammerheads", "Three Rocketeers"},
		{"Arctic Assassins", "Speed Demons"}, {"Rangers", "Sappers"}, {"Spectres", "Elite Ink"},
		{"Armada", "Astro"}, {"Mustangs", "Cyclones"}},
	3: {{"Armada", "Clarity United"}, {"Cyclones", "Kings"}, {"Mustangs", "Vibe Clan"},
		{"Astro", "Bleacher Boys"}, {"Sappers", "Hammerheads"}, {"Spectres", "Speed Demons"},
		{"Elite Ink", "Arctic Assassins"}, {"Rangers", "Three Rocketeers"}},
	4: {{"Bleacher Boys", "Kings"}, {"Clarity United", "Vibe Clan"}, {"Hammerheads", "Arctic Assassins"},
		{"Three Rocketeers", "Speed Demons"}, {"Rangers", "Spectres"}, {"Sappers", "Elite Ink"},
		{"Armada", "Mustangs"}, {"Astro", "Cyclones"}},
	5: {{"Clarity United", "Kings"}, {"Vibe Clan", "Bleacher Boys"}, {"Hammerheads", "Speed Demons"},
		{"Three Rocketeers", "Arctic Assassins"}, {"Rangers", "Elite Ink"}, {"Sappers", "Spectres"},
		{"Armada", "Cyclones"}, {"Astro", "Mustangs"}},
	6: {{"Bleacher Boys", "Sappers"}, {"Clarity United", "Spectres"}, {"Elite Ink", "Kings"},
		{"Rangers", "Vibe Clan"}, {"Cyclones", "Three Rocketeers"}, {"Astro", "Hammerheads"},
		{"Speed Demons", "Mustangs"}, {"Arctic Assassins", "Armada"}},
	7: {{"Bleacher Boys", "Kings"}, {"Clarity United", "Vibe Clan"}, {"Hammerheads", "Arctic Assassins"},
		{"Three Rocketeers", "Speed Demons"}, {"Rangers", "Spectres"}, {"Sappers", "Elite Ink"},
		{"Armada", "Mustangs"}, {"Astro", "Cyclones"}},
	8: {{"Clarity United", "Kings"}, {"Vibe Clan", "Bleacher Boys"}, {"Hammerheads", "Speed Demons"},
		{"Three Rocketeers", "Arctic Assassins"}, {"Rangers", "Elite Ink"}, {"Sappers", "Spectres"},
		{"Armada", "Cyclones"}, {"Astro", "Mustangs"}},
	9: {{"Three Rocketeers", "Bleacher Boys"}, {"Clarity United", "Speed Demons"},
		{"Sappers", "Mustangs"}, {"Astro", "Elite Ink"}, {"Hammerheads", "Kings"},
		{"Vibe Clan", "Arctic Assassins"}, {"Spectres", "Armada"}, {"Cyclones", "Rangers"}},
	10: {{"Bleacher Boys", "Clarity United"}, {"Kings", "Vibe Clan"}, {"Hammerheads", "Three Rocketeers"},
		{"Arctic Assassins", "Speed Demons"}, {"Rangers", "Sappers"}, {"Spectres", "Elite Ink"},
		{"Armada", "Astro"}, {"Mustangs", "Cyclones"}},
	21: {{"Hammerheads", "Speed Demons"}, {"Rangers", "Vibe Clan"}, {"Clarity United", "Elite Ink"},
		{"Three Rocketeers", "Armada"}, {"Sappers", "Kings"}, {"Cyclones", "Astro"},
		{"Arctic Assassins", "Bleacher Boys"}, {"Spectres", "Mustangs"}},
	22: {},
	23: {},
	24: {},
}

// IsPreseason reports whether week belongs to the preseason tournament.
func IsPreseason(week int) bool {
	return week >= 21 && week <= 24
}

// ChannelSlug lowercases a team name and joins its words with dashes.
func ChannelSlug(team string) string {
	return strings.ToLower(strings.Join(strings.Fields(team), "-"))
}

// ChannelName returns the scheduling channel name for a matchup.
func (m Matchup) ChannelName(week int) string {
	return fmt.Sprintf("week%d-%s-vs-%s", week, ChannelSlug(m.Home), ChannelSlug(m.Away))
}

// WeekChannelPrefix is the name prefix shared by one week's channels.
// A zero week matches every week.
func WeekChannelPrefix(week int) string {
	if week <= 0 {
		return "week"
	}
	return fmt.Sprintf("week%d-", week)
}

// ParseMatchupChannel recovers the two teams from a scheduling channel name.
func ParseMatchupChannel(name string) (Matchup, bool) {
	if !strings.HasPrefix(name, "week") {
		return Matchup{}, false
	}
	dash := strings.Index(name, "-")
	if dash < 0 {
		return Matchup{}, false
	}
	parts := strings.SplitN(name[dash+1:], "-vs-", 2)
	if len(parts) != 2 {
		return Matchup{}, false
	}
	return Matchup{Home: teamFromSlug(parts[0]), Away: teamFromSlug(parts[1])}, true
}

func teamFromSlug(slug string) string {
	for name := range Teams {
		if ChannelSlug(name) == slug {
			return name
		}
	}
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
