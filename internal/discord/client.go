package discord

import (
	"github.com/bwmarrin/discordgo"
)

// ChatClient is the outbound chat capability: post, edit, react, and display
// name lookup. The live implementation wraps a discordgo session; tests
// substitute fakes.
type ChatClient interface {
	PostMessage(channelID string, msg *discordgo.MessageSend) (messageID string, err error)
	PostReply(channelID, messageID, text string) error
	UpdateMessage(channelID, messageID string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error
	AddReaction(channelID, messageID, emoji string) error
	UserDisplayName(guildID, userID string) string
}

type sessionClient struct {
	s *discordgo.Session
}

// NewChatClient wraps a connected discordgo session.
func NewChatClient(s *discordgo.Session) ChatClient {
	return &sessionClient{s: s}
}

func (c *sessionClient) PostMessage(channelID string, msg *discordgo.MessageSend) (string, error) {
	m, err := c.s.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// PostReply threads the text under the given message; with no message id it
// falls back to a plain channel message (slash-command origins have no
// message to thread from).
func (c *sessionClient) PostReply(channelID, messageID, text string) error {
	if messageID == "" {
		_, err := c.s.ChannelMessageSend(channelID, text)
		return err
	}
	_, err := c.s.ChannelMessageSendReply(channelID, text, &discordgo.MessageReference{
		ChannelID: channelID,
		MessageID: messageID,
	})
	return err
}

func (c *sessionClient) UpdateMessage(channelID, messageID string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.Embeds = &embeds
	edit.Components = &components
	_, err := c.s.ChannelMessageEditComplex(edit)
	return err
}

func (c *sessionClient) AddReaction(channelID, messageID, emoji string) error {
	return c.s.MessageReactionAdd(channelID, messageID, emoji)
}

// UserDisplayName prefers the guild nickname, then the account username.
func (c *sessionClient) UserDisplayName(guildID, userID string) string {
	if guildID != "" {
		if m, err := c.s.GuildMember(guildID, userID); err == nil {
			if m.Nick != "" {
				return m.Nick
			}
			if m.User != nil {
				return m.User.Username
			}
		}
	}
	if u, err := c.s.User(userID); err == nil {
		return u.Username
	}
	return userID
}
