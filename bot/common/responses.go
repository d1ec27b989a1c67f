package common

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
)

// DeferResponse sends a deferred response to give more time for processing
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags,
		},
	})
}

// RespondWithEmbed sends an embed as an interaction response
func RespondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}

	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	if len(components) > 0 {
		data.Components = components
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// FollowUpWithEmbed sends an embed, and optionally a PNG attachment, as a follow-up
// to a deferred interaction. The embed can reference the attachment as attachment://<fileName>.
func FollowUpWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, fileName string, png []byte) (*discordgo.Message, error) {
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}

	if len(png) > 0 {
		params.Files = []*discordgo.File{{
			Name:        fileName,
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}}
	}

	return s.FollowupMessageCreate(i.Interaction, true, params)
}

// UpdateComponentMessage replaces the message a component belongs to
func UpdateComponentMessage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{},
		},
	})
}

// DisableComponents disables all components in a message
func DisableComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	disabled := make([]discordgo.MessageComponent, len(components))

	for i, component := range components {
		// Received messages decode into pointers, built ones are values
		var row discordgo.ActionsRow
		switch c := component.(type) {
		case discordgo.ActionsRow:
			row = c
		case *discordgo.ActionsRow:
			row = *c
		default:
			disabled[i] = component
			continue
		}

		newRow := discordgo.ActionsRow{
			Components: make([]discordgo.MessageComponent, len(row.Components)),
		}
		for j, comp := range row.Components {
			switch c := comp.(type) {
			case discordgo.Button:
				c.Disabled = true
				newRow.Components[j] = c
			case *discordgo.Button:
				button := *c
				button.Disabled = true
				newRow.Components[j] = button
			default:
				newRow.Components[j] = comp
			}
		}
		disabled[i] = newRow
	}

	return disabled
}

// RespondEphemeral sends a short ephemeral text reply
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
