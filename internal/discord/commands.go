package discord

import (
	"github.com/bwmarrin/discordgo"
)

var minZero = 0.0

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func teamOption(required bool) *discordgo.ApplicationCommandOption {
	opt := stringOption("team", "Team name", required)
	opt.Autocomplete = true
	return opt
}

// commandDefinitions returns every slash command the bot registers
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "add",
			Description: "Sign a Free Agent to your team (admin approval required)",
			Options:     []*discordgo.ApplicationCommandOption{userOption("player", "Free Agent to sign", true)},
		},
		{
			Name:        "drop",
			Description: "Drop a player from your team to 2 Day Waivers (admin approval required)",
			Options:     []*discordgo.ApplicationCommandOption{userOption("player", "Player to drop", true)},
		},
		{
			Name:        "trade",
			Description: "Propose a one-for-one trade with another team",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("player1", "Your player", true),
				userOption("player2", "Their player", true),
			},
		},
		{
			Name:        "sub",
			Description: "Sign a Free Agent on a sub deal through Sunday 11:59 PM ET",
			Options:     []*discordgo.ApplicationCommandOption{userOption("player", "Free Agent to sub in", true)},
		},
		{
			Name:        "waiverclaim",
			Description: "Place a waiver claim on a player",
			Options:     []*discordgo.ApplicationCommandOption{userOption("player", "Player on waivers", true)},
		},
		{
			Name:        "retire",
			Description: "Retire a player (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("player", "Player to retire", true),
				stringOption("reason", "Reason for retiring", false),
			},
		},
		{
			Name:        "unretire",
			Description: "Bring a player out of retirement onto waivers (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("player", "Player to unretire", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "salary",
					Description: "Salary to record",
					Required:    true,
					MinValue:    &minZero,
				},
			},
		},
		{
			Name:        "updateuser",
			Description: "Create or update a player's sheet row (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Member to update", true),
				stringOption("nickname", "Nickname", false),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "salary",
					Description: "Salary",
					MinValue:    &minZero,
				},
				teamOption(false),
			},
		},
		{
			Name:        "transaction",
			Description: "Move a player to a team without approval (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("player", "Player to move", true),
				teamOption(true),
			},
		},
		{
			Name:        "transactions",
			Description: "Show recent transactions (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many to show (default 10)",
				},
			},
		},
		{
			Name:        "refresh",
			Description: "Reload the roster from the sheet (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "dry_run",
					Description: "Only check the sheet",
				},
			},
		},
		{
			Name:        "startweek",
			Description: "Create scheduling channels for a week (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "week",
					Description: "Week number",
					Required:    true,
				},
			},
		},
		{
			Name:        "clearschedule",
			Description: "Delete every weekly scheduling channel",
		},
		{
			Name:        "propose",
			Description: "Propose a match time in this scheduling channel",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("time", "Proposed time (EST)", true)},
		},
		{
			Name:        "confirm",
			Description: "Confirm the proposed match time",
			Options:     []*discordgo.ApplicationCommandOption{stringOption("time", "Time exactly as proposed", true)},
		},
		{
			Name:        "salary",
			Description: "Look up a player's salary",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Player", true)},
		},
		{
			Name:        "profile",
			Description: "Show a player's roster profile",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Player (defaults to you)", false)},
		},
		{
			Name:        "teaminfo",
			Description: "Show a team's roster and payroll",
			Options:     []*discordgo.ApplicationCommandOption{teamOption(true)},
		},
		{
			Name:        "sendmessage",
			Description: "Send a message as the bot (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel to post in",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				stringOption("message", "Message text", true),
			},
		},
		{
			Name:        "help",
			Description: "List bot commands",
		},
	}
}

// options indexes a command's options by name
func options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// optionUser returns a user option along with the resolved guild member, when
// Discord sent one.
func optionUser(i *discordgo.InteractionCreate, name string) (*discordgo.User, *discordgo.Member) {
	opt, ok := options(i)[name]
	if !ok {
		return nil, nil
	}
	user := opt.UserValue(nil)
	var member *discordgo.Member
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if u, ok := resolved.Users[user.ID]; ok {
			user = u
		}
		if m, ok := resolved.Members[user.ID]; ok {
			member = m
			member.User = user
		}
	}
	return user, member
}

func optionString(i *discordgo.InteractionCreate, name string) (string, bool) {
	opt, ok := options(i)[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

func optionInt(i *discordgo.InteractionCreate, name string) (int, bool) {
	opt, ok := options(i)[name]
	if !ok {
		return 0, false
	}
	return int(opt.IntValue()), true
}

func optionBool(i *discordgo.InteractionCreate, name string) bool {
	opt, ok := options(i)[name]
	return ok && opt.BoolValue()
}

// displayName prefers the server nickname
func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	return user.Username
}
