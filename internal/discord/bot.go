package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/jhk7784/pungro-payment-server/internal/service"
)

const (
	commandName    = "pay"
	handlerTimeout = 10 * time.Second
)

// NewSession builds a gateway session with the intents the dispatcher needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	return s, nil
}

// Bot manages the gateway lifecycle and adapts raw Discord events into
// dispatcher calls.
type Bot struct {
	session    *discordgo.Session
	guildID    string
	dispatcher *Dispatcher
	chat       ChatClient
	log        *logrus.Logger
	command    *discordgo.ApplicationCommand
}

func NewBot(session *discordgo.Session, guildID string, dispatcher *Dispatcher, chat ChatClient, log *logrus.Logger) *Bot {
	bot := &Bot{
		session:    session,
		guildID:    guildID,
		dispatcher: dispatcher,
		chat:       chat,
		log:        log,
	}

	// Content edits arrive as MessageUpdate events, which are deliberately
	// not subscribed: only fresh messages reach the dispatcher.
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	return bot
}

// Start opens the gateway connection and registers the slash command.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return err
	}

	cmd, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, &discordgo.ApplicationCommand{
		Name:        commandName,
		Description: "결제 요청을 등록합니다",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "금액과 내용 (예: 150000 식자재 양파 구매)",
				Required:    true,
			},
		},
	})
	if err != nil {
		_ = b.session.Close()
		return err
	}
	b.command = cmd

	b.log.Info("bot connected to Discord")
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if b.command != nil {
		_ = b.session.ApplicationCommandDelete(b.session.State.User.ID, b.guildID, b.command.ID)
	}
	_ = b.session.Close()
	b.log.Info("bot disconnected")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.dispatcher.HandleMessage(ctx, InboundMessage{
		ChannelID:  m.ChannelID,
		MessageID:  m.ID,
		AuthorName: memberDisplayName(m.Member, m.Author),
		FromBot:    m.Author.Bot,
		Text:       m.Content,
	})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}
	text := ""
	if len(data.Options) > 0 {
		text = data.Options[0].StringValue()
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply := b.dispatcher.HandleCommand(ctx, InboundCommand{
		ChannelID:  i.ChannelID,
		AuthorName: interactionDisplayName(i),
		Text:       text,
	})

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: reply},
	})
	if err != nil {
		b.log.WithError(err).Error("command response failed")
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Acknowledge before any database call: the platform treats slow
	// interactions as failed and retries delivery.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.log.WithError(err).Error("interaction ack failed")
	}

	action, requestID, ok := splitCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.dispatcher.HandleDecision(ctx, DecisionAction{
		RequestID:   requestID,
		Action:      action,
		DeciderName: b.chat.UserDisplayName(b.guildID, interactionUserID(i)),
		ChannelID:   i.ChannelID,
		MessageID:   i.Message.ID,
	})
}

// splitCustomID parses "approve:<id>" / "reject:<id>" button ids.
func splitCustomID(customID string) (action, requestID string, ok bool) {
	action, requestID, found := strings.Cut(customID, ":")
	if !found || requestID == "" {
		return "", "", false
	}
	if action != service.ActionApprove && action != service.ActionReject {
		return "", "", false
	}
	return action, requestID, true
}

func memberDisplayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u != nil {
		return u.Username
	}
	return ""
}

func interactionDisplayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		return memberDisplayName(i.Member, i.Member.User)
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
