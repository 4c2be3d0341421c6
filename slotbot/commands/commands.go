// Package commands collects every slash command the bot registers.
package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/commands/admin"
	"github.com/disgoorg/slotbot/slotbot/commands/system"
)

var Commands = []discord.ApplicationCommandCreate{}

func init() {
	Commands = append(Commands, admin.Commands...)
	Commands = append(Commands, system.Commands...)
}

// Register mounts every command handler on h.
func Register(h *handler.Mux, b *slotbot.Bot) {
	admin.Register(h, b)
	system.Register(h)
}
