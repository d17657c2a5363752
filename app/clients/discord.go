package clients

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/JeremyDillmann/task-bot-ai/app/runtime"
)

var _ Interface = &DiscordClient{}

// DiscordClient is a secondary transport for households that chat on Discord
// instead of Telegram. Same contract: every text message becomes a runtime
// event, the reply goes back to the originating channel.
type DiscordClient struct {
	Client
	session   *discordgo.Session
	channelID string
}

func NewDiscordClientFromConfig(config map[string]string) (*DiscordClient, error) {
	token := config["token"]
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	dc := &DiscordClient{
		session:   session,
		channelID: config["channel_id"],
	}
	session.AddHandler(dc.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return dc, nil
}

func (c *DiscordClient) Subscribe(rt *runtime.Runtime) {
	c.runtime = rt
	if err := c.session.Open(); err != nil {
		log.Printf("⚠️ Error opening discord session: %v", err)
		return
	}
	log.Print("📱 Discord client started, listening for messages")
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func (c *DiscordClient) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if m.Content == "" {
		return
	}
	if c.channelID != "" && m.ChannelID != c.channelID {
		return
	}

	channelID := m.ChannelID
	c.runtime.QueueEvent(runtime.Event{
		Message: runtime.Message{
			Text:       m.Content,
			SenderID:   m.Author.ID,
			SenderName: displayName(m),
			ChatID:     channelID,
			Group:      m.GuildID != "",
		},
		Reply: func(text string) error {
			_, err := s.ChannelMessageSend(channelID, text)
			return err
		},
	})
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return m.Author.Username
}
