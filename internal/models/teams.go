package models

import "strings"

// TeamInfo is the presentation data for a team
type TeamInfo struct {
	Name  string
	Color int
	Logo  string
	Emoji string
}

const defaultTeamColor = 0x3498DB

const logoBase = "https://cdn.discordapp.com/attachments/1064643795305644042/"

// Teams maps team names to their presentation data
var Teams = map[string]TeamInfo{
	"Arctic Assassins": {Color: 0x00FFFF, Logo: logoBase + "1251007250990895114/AA.png", Emoji: "Arctic_Assassins_Logo_New"},
	"Armada":           {Color: 0x12086F, Logo: logoBase + "1261904175432859688/Armada_logo_final.png", Emoji: "Armada_Logo_New"},
	"Astro":            {Color: 0x12086F, Logo: logoBase + "1071242785505673246/Astro_S6.png", Emoji: "Astro_Gaming_Logo_New"},
	"Bleacher Boys":    {Color: 0x12086F, Logo: logoBase + "1064643979007774872/Bleacher_Boys_S4.png", Emoji: "Bleacher_Boys_Logo_New"},
	"Clarity United":   {Color: 0xFF0000, Logo: logoBase + "1117597029477134397/clarity_united.png", Emoji: "Clarity_United_Logo_New"},
	"Cyclones":         {Color: 0x808080, Logo: logoBase + "1193617663574954004/cyclones.png", Emoji: "Cyclones_Logo_New"},
	"Elite Ink":        {Color: 0xB39EB5, Logo: logoBase + "1100520889155604530/Elite_Ink_S7.png", Emoji: "Elite_Ink_Logo_New"},
	"Hammerheads":      {Color: 0xFFED29, Logo: logoBase + "1068301589506441226/Hammerheads.png", Emoji: "HammerHeads_Logo_New"},
	"Kings":            {Color: 0x4CBB17, Logo: logoBase + "1064644138261282876/KingsS6.png", Emoji: "Kings_Logo_New"},
	"Mustangs":         {Color: 0xED820E, Logo: logoBase + "1100520888551604254/Mustangs_S7.png", Emoji: "Mustangs_Logo_New"},
	"Rangers":          {Color: 0x895129, Logo: logoBase + "1064644197275156542/Rangers_S5.png", Emoji: "Rangers_Logo_New"},
	"Sappers":          {Color: 0xB39EB5, Logo: logoBase + "1100520888002170981/Sappers_S7.png", Emoji: "Sappers_Logo_New"},
	"Spectres":         {Color: 0x7C0A02, Logo: logoBase + "1064644186550325419/Specters_S5.png", Emoji: "Spectres_Logo_New"},
	"Speed Demons":     {Color: 0xB39EB5, Logo: logoBase + "1064644205986713712/Speed_Demons_S5.png", Emoji: "Speed_Demons_Logo_New"},
	"Three Rocketeers": {Color: 0xB39EB5, Logo: logoBase + "1064643914306429059/3_Rocketeers_S5.png", Emoji: "Three_Rocketeers_Logo_New"},
	"Vibe Clan":        {Color: 0x00FFFF, Logo: logoBase + "1064644208444579971/VibeClan_S5.png", Emoji: "Vibe_Clan_Logo_New"},
	TeamFreeAgent:      {Color: 0xFFFFFF, Logo: "https://cdn.discordapp.com/attachments/818191050685808670/1426631801081696316/IMG_1132-removebg-preview.png", Emoji: "Free_agents"},
}

// GetTeamInfo looks up a team case-insensitively. Unknown teams get a
// default color and no logo.
func GetTeamInfo(team string) TeamInfo {
	team = strings.TrimSpace(team)
	if info, ok := Teams[team]; ok {
		info.Name = team
		return info
	}
	for name, info := range Teams {
		if strings.EqualFold(name, team) {
			info.Name = name
			return info
		}
	}
	return TeamInfo{Name: team, Color: defaultTeamColor}
}

// KnownTeamNames returns every real team in the presentation table
func KnownTeamNames() []string {
	var names []string
	for name := range Teams {
		if IsRealTeam(name) {
			names = append(names, name)
		}
	}
	return names
}
