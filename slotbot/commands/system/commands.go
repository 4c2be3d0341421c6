package system

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/slotbot/handlers"
)

var Commands = []discord.ApplicationCommandCreate{
	Help,
}

func Register(h *handler.Mux) {
	h.Command("/"+Help.Name, handlers.WrapWithLogging(Help.Name, HelpHandler))
}
