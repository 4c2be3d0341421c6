package admin

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

var Hold = discord.SlashCommandCreate{
	Name:        "hold",
	Description: "Hold a slot channel (prevent user from sending messages)",
	Options: []discord.ApplicationCommandOption{
		slotChannelOption("The slot channel to hold"),
	},
}

var Unhold = discord.SlashCommandCreate{
	Name:        "unhold",
	Description: "Unhold a slot channel (allow user to send messages again)",
	Options: []discord.ApplicationCommandOption{
		slotChannelOption("The slot channel to unhold"),
	},
}

func HoldHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channel := e.SlashCommandInteractionData().Channel("channel")
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		if _, err := b.Slots.Hold(ctx, channel.ID); err != nil {
			return utils.EH.FollowupError(e, err)
		}
		return utils.EH.FollowupSuccess(e, fmt.Sprintf("%s is on hold.", discord.ChannelMention(channel.ID)))
	}
}

func UnholdHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channel := e.SlashCommandInteractionData().Channel("channel")
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		if _, err := b.Slots.Unhold(ctx, channel.ID); err != nil {
			return utils.EH.FollowupError(e, err)
		}
		return utils.EH.FollowupSuccess(e, fmt.Sprintf("%s is open again.", discord.ChannelMention(channel.ID)))
	}
}
