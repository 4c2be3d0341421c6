package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/disgoorg/slotbot/internal/domain/slots"
	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

// operationTimeout bounds one lifecycle call including its Discord round trips.
const operationTimeout = 30 * time.Second

const defaultDuration = "1w"

var Slot = discord.SlashCommandCreate{
	Name:        "slot",
	Description: "Create a slot channel for a user.",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to assign the slot to",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "Duration, e.g. 1w, 2d, 1m2w (default 1w)",
			Required:    false,
		},
	},
}

func SlotHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		user := data.User("user")
		duration, ok := data.OptString("duration")
		if !ok || duration == "" {
			duration = defaultDuration
		}

		if _, err := slots.ParseDuration(duration); err != nil {
			return utils.EH.CreateUserError(e, err.Error())
		}
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		rec, err := b.Slots.Create(ctx, slots.CreateRequest{
			UserID:   user.ID,
			Username: user.Username,
			Duration: duration,
		})
		if err != nil {
			return utils.EH.FollowupError(e, err)
		}
		return utils.EH.FollowupSuccess(e, fmt.Sprintf("Created %s for %s, expires %s.",
			discord.ChannelMention(rec.ChannelID), discord.UserMention(user.ID), rec.ExpiryDate))
	}
}
