package admin

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

var RevokeSlot = discord.SlashCommandCreate{
	Name:        "revokeslot",
	Description: "Revoke a slot channel.",
	Options: []discord.ApplicationCommandOption{
		slotChannelOption("The slot channel to revoke"),
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for revoking the slot",
			Required:    false,
		},
	},
}

func RevokeSlotHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		channel := data.Channel("channel")
		reason, _ := data.OptString("reason")

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		if _, err := b.Slots.Revoke(ctx, channel.ID, reason); err != nil {
			return utils.EH.FollowupError(e, err)
		}
		return utils.EH.FollowupSuccess(e, fmt.Sprintf("Revoked %s.", discord.ChannelMention(channel.ID)))
	}
}

func slotChannelOption(description string) discord.ApplicationCommandOptionChannel {
	return discord.ApplicationCommandOptionChannel{
		Name:         "channel",
		Description:  description,
		Required:     true,
		ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
	}
}
