package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/qrls/qrls-bot/internal/config"
	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/pkg/logger"
)

// RoleManager adds and removes guild roles for roster moves. Failures are
// collected as warnings; the sheet stays the source of truth.
type RoleManager struct {
	session *discordgo.Session
	config  *config.Config
	logger  *logger.Logger
}

func NewRoleManager(session *discordgo.Session, cfg *config.Config, log *logger.Logger) *RoleManager {
	return &RoleManager{session: session, config: cfg, logger: log}
}

// roleByName finds a role whose name matches ignoring case
func roleByName(roles []*discordgo.Role, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r.Name), name) {
			return r.ID, true
		}
	}
	return "", false
}

func (rm *RoleManager) guildRoles(guildID string) []*discordgo.Role {
	if g, err := rm.session.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g.Roles
	}
	roles, err := rm.session.GuildRoles(guildID)
	if err != nil {
		rm.logger.Warn("Failed to fetch guild roles:", err)
		return nil
	}
	return roles
}

// TeamRoleID resolves a team's role from TEAM_ROLE_IDS, then by role name.
func (rm *RoleManager) TeamRoleID(guildID, team string) (string, bool) {
	if !models.IsRealTeam(team) {
		return "", false
	}
	if id, ok := rm.config.TeamRoleID(team); ok {
		return id, true
	}
	return roleByName(rm.guildRoles(guildID), team)
}

// AllTeamRoleIDs returns the role of every team the bot knows about
func (rm *RoleManager) AllTeamRoleIDs(guildID string) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range rm.config.TeamRoleIDs {
		add(id)
	}
	roles := rm.guildRoles(guildID)
	for _, team := range models.KnownTeamNames() {
		if _, ok := rm.config.TeamRoleID(team); ok {
			continue
		}
		if id, ok := roleByName(roles, team); ok {
			add(id)
		}
	}
	return ids
}

// Apply removes then adds roles on a member and returns a warning for each
// role it could not change. Empty role IDs are skipped.
func (rm *RoleManager) Apply(guildID, userID string, remove, add []string) []string {
	var warnings []string
	for _, id := range remove {
		if id == "" {
			continue
		}
		if err := rm.session.GuildMemberRoleRemove(guildID, userID, id); err != nil && !isUnknown(err) {
			rm.logger.WithFields(logger.Fields{"user_id": userID, "role_id": id}).Warn("Failed to remove role:", err)
			warnings = append(warnings, fmt.Sprintf("could not remove <@&%s> from <@%s>", id, userID))
		}
	}
	for _, id := range add {
		if id == "" {
			continue
		}
		if err := rm.session.GuildMemberRoleAdd(guildID, userID, id); err != nil {
			rm.logger.WithFields(logger.Fields{"user_id": userID, "role_id": id}).Warn("Failed to add role:", err)
			warnings = append(warnings, fmt.Sprintf("could not add <@&%s> to <@%s>", id, userID))
		}
	}
	return warnings
}

// RemoveSubRole ends a sub contract. A member who has left the guild counts
// as done.
func (rm *RoleManager) RemoveSubRole(ctx context.Context, contract *models.SubContract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	roleID := contract.RoleID
	if roleID == "" {
		id, ok := rm.TeamRoleID(contract.GuildID, contract.TeamName)
		if !ok {
			return fmt.Errorf("no role for team %s", contract.TeamName)
		}
		roleID = id
	}
	err := rm.session.GuildMemberRoleRemove(contract.GuildID, contract.PlayerID, roleID)
	if err != nil && !isUnknown(err) {
		return fmt.Errorf("failed to remove sub role: %w", err)
	}
	return nil
}

// isUnknown reports a 404 for a member or role that no longer exists
func isUnknown(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownRole, discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// formatWarnings renders role warnings for an approval message
func formatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	return "\n⚠️ Role sync: " + strings.Join(warnings, "; ")
}
