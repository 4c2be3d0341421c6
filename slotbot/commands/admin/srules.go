package admin

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/internal/domain/slots"
	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

var SRules = discord.SlashCommandCreate{
	Name:        "srules",
	Description: "Send the slot rules in a channel.",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionChannel{
			Name:         "channel",
			Description:  "The channel to send the rules in (optional)",
			Required:     false,
			ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
		},
	},
}

func SRulesHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channelID := e.ChannelID()
		if channel, ok := e.SlashCommandInteractionData().OptChannel("channel"); ok {
			channelID = channel.ID
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		rules := slots.RulesEmbed(b.Slots.MentionLimit(), b.Location.String(), slots.ColorPurple)
		if _, err := b.Platform.SendEmbeds(ctx, channelID, rules); err != nil {
			return utils.EH.CreateClassifiedError(e, utils.SystemError, "Failed to send the slot rules.")
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: "Slot rules sent!",
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}
