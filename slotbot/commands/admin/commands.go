// Package admin holds the administrator-only slot commands.
package admin

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/handlers"
)

var Commands = []discord.ApplicationCommandCreate{
	Slot,
	RevokeSlot,
	Hold,
	Unhold,
	SRules,
	Slots,
}

// Register mounts every admin command behind the administrator gate.
func Register(h *handler.Mux, b *slotbot.Bot) {
	mount := func(name, action string, fn handler.CommandHandler) {
		h.Command("/"+name, handlers.WrapWithLogging(name, handlers.RequireAdmin(action, fn)))
	}
	mount(Slot.Name, "create slots", SlotHandler(b))
	mount(RevokeSlot.Name, "revoke slots", RevokeSlotHandler(b))
	mount(Hold.Name, "hold slots", HoldHandler(b))
	mount(Unhold.Name, "unhold slots", UnholdHandler(b))
	mount(SRules.Name, "post the slot rules", SRulesHandler(b))
	mount(Slots.Name, "list slots", SlotsHandler(b))
}
