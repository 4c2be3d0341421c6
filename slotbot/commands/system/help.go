// Package system holds commands open to every member.
package system

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/disgoorg/slotbot/internal/domain/slots"
	"github.com/disgoorg/slotbot/slotbot/utils"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "Show help for slot bot commands.",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "command",
			Description: "Show details for one command",
			Required:    false,
		},
	},
}

type CommandInfo struct {
	Name    string
	Usage   string
	Details string
	Admin   bool
}

var Reference = []CommandInfo{
	{
		Name:    "slot",
		Usage:   "/slot [user] [duration]",
		Details: "Creates a slot channel for the user. Duration is a sum of days (d), weeks (w, 7 days) and months (m, 30 days), for example `1w` or `1m2w`. Defaults to one week.",
		Admin:   true,
	},
	{
		Name:    "revokeslot",
		Usage:   "/revokeslot [channel] [reason]",
		Details: "Revokes the slot in the channel. The owner keeps read access but can no longer post.",
		Admin:   true,
	},
	{
		Name:    "hold",
		Usage:   "/hold [channel]",
		Details: "Puts the slot on hold so the owner cannot send messages.",
		Admin:   true,
	},
	{
		Name:    "unhold",
		Usage:   "/unhold [channel]",
		Details: "Lifts a hold so the owner can send messages again.",
		Admin:   true,
	},
	{
		Name:    "srules",
		Usage:   "/srules [channel]",
		Details: "Sends the slot rules in the given channel, or the current one.",
		Admin:   true,
	},
	{
		Name:    "slots",
		Usage:   "/slots [status]",
		Details: "Lists slot records. Shows active and held slots unless a status is picked.",
		Admin:   true,
	},
	{
		Name:    "help",
		Usage:   "/help [command]",
		Details: "Displays this help message.",
	},
}

// Lookup returns the reference entries that best match query, best first.
func Lookup(query string) []CommandInfo {
	query = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(query)), "/")
	names := make([]string, len(Reference))
	for i, c := range Reference {
		if c.Name == query {
			return []CommandInfo{c}
		}
		names[i] = c.Name
	}

	matches := fuzzy.Find(query, names)
	out := make([]CommandInfo, 0, len(matches))
	for _, m := range matches {
		out = append(out, Reference[m.Index])
	}
	return out
}

func HelpHandler(e *handler.CommandEvent) error {
	entries := Reference
	if query, ok := e.SlashCommandInteractionData().OptString("command"); ok && query != "" {
		entries = Lookup(query)
		if len(entries) == 0 {
			return utils.EH.CreateClassifiedError(e, utils.NotFoundError, fmt.Sprintf("No command matches '%s'.", query))
		}
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{helpEmbed(entries)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

func helpEmbed(entries []CommandInfo) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle("Help - Slot Bot Commands").
		SetDescription("Here are the available commands you can use:").
		SetColor(slots.ColorBlue)
	for _, c := range entries {
		value := c.Details
		if c.Admin {
			value += "\n*Administrators only.*"
		}
		embed.AddField(c.Usage, value, false)
	}
	return embed.Build()
}
