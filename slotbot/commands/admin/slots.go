package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/disgoorg/slotbot/internal/domain/slots"
	"github.com/disgoorg/slotbot/internal/gateways/store"
	"github.com/disgoorg/slotbot/slotbot"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

const slotsPerPage = 10

var Slots = discord.SlashCommandCreate{
	Name:        "slots",
	Description: "List slot records.",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "status",
			Description: "Only show slots with this status (default: active and held)",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Active", Value: string(store.StatusActive)},
				{Name: "Held", Value: string(store.StatusHeld)},
				{Name: "Expired", Value: string(store.StatusExpired)},
				{Name: "Revoked", Value: string(store.StatusRevoked)},
				{Name: "All", Value: "all"},
			},
		},
	},
}

func SlotsHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		filter, _ := e.SlashCommandInteractionData().OptString("status")
		statuses := statusFilter(filter)

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		records := b.Slots.List(ctx, statuses...)
		if len(records) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No slots match that filter.")
		}

		lines := make([]string, len(records))
		for i, r := range records {
			lines[i] = FormatRecord(r)
		}
		totalPages := (len(lines) + slotsPerPage - 1) / slotsPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * slotsPerPage
				end := min(start+slotsPerPage, len(lines))
				embed.
					SetTitle("Slots").
					SetDescription(strings.Join(lines[start:end], "\n")).
					SetColor(slots.ColorBlue).
					SetFooter(fmt.Sprintf("Page %d/%d • %d slots", page+1, totalPages, len(lines)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, true)
	}
}

// statusFilter turns the command option into the statuses to list. No option means live slots.
func statusFilter(option string) []store.Status {
	switch option {
	case "":
		return []store.Status{store.StatusActive, store.StatusHeld}
	case "all":
		return nil
	default:
		return []store.Status{store.Status(option)}
	}
}

// FormatRecord renders one slot as a list line.
func FormatRecord(r *store.Record) string {
	return fmt.Sprintf("%s %s · %s · `%s` → `%s`",
		statusIcon(r.Status),
		discord.ChannelMention(r.ChannelID),
		discord.UserMention(r.UserID),
		r.PurchaseDate,
		r.ExpiryDate)
}

func statusIcon(s store.Status) string {
	switch s {
	case store.StatusActive:
		return "🟢"
	case store.StatusHeld:
		return "🟡"
	case store.StatusExpired:
		return "⚫"
	case store.StatusRevoked:
		return "🔴"
	default:
		return "❔"
	}
}
