package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// CustomID prefixes for button routing. IDs take the form prefix:key:action.
const (
	prefixApproval      = "approval"
	prefixTradeCaptain  = "tradecap"
	prefixWaiverConfirm = "waiverconfirm"
	prefixWaiverAdmin   = "waiveradmin"
	prefixClearSchedule = "clearschedule"
)

const (
	actionApprove = "approve"
	actionReject  = "reject"
	actionDecline = "decline"
	actionYes     = "yes"
	actionNo      = "no"
	actionConfirm = "confirm"
	actionCancel  = "cancel"
)

func customID(prefix, key, action string) string {
	return prefix + ":" + key + ":" + action
}

// parseCustomID splits a button CustomID into its prefix, key and action
func parseCustomID(id string) (prefix, key, action string, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

type buttonSpec struct {
	Label  string
	Action string
	Style  discordgo.ButtonStyle
}

// buttonRow builds one action row of buttons sharing a prefix and key
func buttonRow(prefix, key string, buttons ...buttonSpec) []discordgo.MessageComponent {
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		row.Components = append(row.Components, discordgo.Button{
			Label:    b.Label,
			Style:    b.Style,
			CustomID: customID(prefix, key, b.Action),
		})
	}
	return []discordgo.MessageComponent{row}
}

func approveRejectButtons(prefix, key string) []discordgo.MessageComponent {
	return buttonRow(prefix, key,
		buttonSpec{Label: "Approve", Action: actionApprove, Style: discordgo.SuccessButton},
		buttonSpec{Label: "Reject", Action: actionReject, Style: discordgo.DangerButton},
	)
}

// disableComponents copies a message's rows with every button disabled
func disableComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, c := range components {
		var children []discordgo.MessageComponent
		switch row := c.(type) {
		case *discordgo.ActionsRow:
			children = row.Components
		case discordgo.ActionsRow:
			children = row.Components
		default:
			continue
		}
		disabled := discordgo.ActionsRow{}
		for _, child := range children {
			switch b := child.(type) {
			case *discordgo.Button:
				cp := *b
				cp.Disabled = true
				disabled.Components = append(disabled.Components, cp)
			case discordgo.Button:
				b.Disabled = true
				disabled.Components = append(disabled.Components, b)
			default:
				disabled.Components = append(disabled.Components, child)
			}
		}
		out = append(out, disabled)
	}
	return out
}
