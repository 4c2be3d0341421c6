package slots

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

const (
	ColorRed    = 0xE74C3C
	ColorGreen  = 0x2ECC71
	ColorOrange = 0xE67E22
	ColorGold   = 0xF1C40F
	ColorBlue   = 0x3498DB
	ColorDark   = 0x2F3136
	ColorPurple = 0xBF40BF

	DefaultRevokeReason = "Violation of Slot Rules"
)

// RulesEmbed is the static rule sheet posted in new slots and by /srules.
func RulesEmbed(limit int, zone string, color int) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("SLOT RULES").
		SetDescription(fmt.Sprintf("**➥ You can ping @here %d times per day on your slot. Based on %s time.\n"+
			"➥ No refunds. \n"+
			"➥ No everyone Ping or role ping.\n"+
			"➥ No advertising allowed, only your autobuy link.\n"+
			"➥ Refuse MM = revoke without refund\n"+
			"➥ Scam = Slot revoke without refund\n"+
			"➥ If you disobey any of these rules, your slot will be revoked without refund.**\n", limit, zone)).
		SetColor(color).
		Build()
}

func createdEmbed(channelID, userID snowflake.ID) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Slot Channel Created").
		SetDescription(fmt.Sprintf("%s for %s has been created.", discord.ChannelMention(channelID), discord.UserMention(userID))).
		SetColor(ColorGreen).
		Build()
}

func detailsEmbed(purchase, expiry time.Time, d Duration, limit int) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Slot Details").
		SetDescription(fmt.Sprintf("**Purchase Date:** <t:%d>\n**Duration:** **%d days | %s**\n**Expiry Date:** <t:%d>",
			purchase.Unix(), d.Days, d.Text(), expiry.Unix())).
		SetColor(ColorGreen).
		AddField("Permissions", fmt.Sprintf("```%dx @here pings```", limit), false).
		AddField("Rule 1", "Must follow the slot rules strictly.", false).
		AddField("Rule 2", "Must always accept MM.", false).
		Build()
}

// RevokedEmbed announces a revoked slot.
func RevokedEmbed(channelID snowflake.ID, reason string) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Slot Revoked").
		SetDescription(fmt.Sprintf("- %s has been revoked.\n- Reason: %s", discord.ChannelMention(channelID), reason)).
		SetColor(ColorRed).
		Build()
}

func heldEmbed(channelID snowflake.ID) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Slot On Hold").
		SetDescription(fmt.Sprintf("- %s is now on hold.\n- Do NOT deal with this slot owner until the slot is unheld!", discord.ChannelMention(channelID))).
		SetColor(ColorOrange).
		Build()
}

func unheldEmbed(channelID snowflake.ID) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Slot Unheld").
		SetDescription(fmt.Sprintf("- %s is now unheld.\n- You can now start deals with this channel again!\n- Always use a middleman to be safe.", discord.ChannelMention(channelID))).
		SetColor(ColorGreen).
		Build()
}

func expiredEmbed() discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Slot Expired").
		SetDescription("- This slot will be deleted within the next few hours!").
		SetColor(ColorRed).
		Build()
}
