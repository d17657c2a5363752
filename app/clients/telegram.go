package clients

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/JeremyDillmann/task-bot-ai/app/runtime"
)

var _ Interface = &TelegramClient{}

// TelegramClient is the household's primary transport. It long-polls for
// updates and forwards every text message to the runtime; in group chats the
// bot only reacts once its @mention is stripped off.
type TelegramClient struct {
	Client
	bot     *tgbotapi.BotAPI
	chatID  int64
	updates tgbotapi.UpdatesChannel
}

// NewTelegramClientFromConfig builds a Telegram client. An optional chat_id
// restricts the bot to one conversation; everything else is ignored.
func NewTelegramClientFromConfig(config map[string]string) (*TelegramClient, error) {
	token := config["token"]
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	tc := &TelegramClient{bot: bot}
	if raw := config["chat_id"]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat_id %q: %w", raw, err)
		}
		tc.chatID = id
	}
	return tc, nil
}

func (c *TelegramClient) Subscribe(rt *runtime.Runtime) {
	c.runtime = rt

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	c.updates = c.bot.GetUpdatesChan(u)

	log.Printf("📱 Telegram client started as @%s", c.bot.Self.UserName)
	go c.listen()
}

func (c *TelegramClient) listen() {
	for update := range c.updates {
		msg := update.Message
		if msg == nil || msg.Text == "" {
			continue
		}
		// Channel posts forwarded into the group carry no sender; without
		// one there is nothing to attribute tasks to.
		if msg.From == nil {
			continue
		}
		if c.chatID != 0 && msg.Chat.ID != c.chatID {
			continue
		}

		text := msg.Text
		if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
			stripped, mentioned := stripMention(text, c.bot.Self.UserName)
			if !mentioned && !strings.HasPrefix(stripped, "/") {
				continue
			}
			text = stripped
		}
		if text == "" {
			continue
		}

		chatID := msg.Chat.ID
		c.runtime.QueueEvent(runtime.Event{
			Message: runtime.Message{
				Text:       text,
				SenderID:   strconv.FormatInt(msg.From.ID, 10),
				SenderName: senderName(msg.From),
				ChatID:     strconv.FormatInt(chatID, 10),
				Group:      msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
			},
			Reply: func(text string) error {
				_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
				return err
			},
		})
	}
}

func (c *TelegramClient) Close() error {
	c.bot.StopReceivingUpdates()
	return nil
}

// stripMention removes a leading @botname token. The second return reports
// whether the bot was addressed at all, so group chatter without a mention
// can be dropped.
func stripMention(text, botName string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	mention := "@" + botName
	if !strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(mention)) {
		return trimmed, false
	}
	rest := trimmed[len(mention):]
	if rest != "" && rest[0] != ' ' && rest[0] != ',' {
		return trimmed, false
	}
	return strings.TrimSpace(strings.TrimPrefix(rest, ",")), true
}

func senderName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.UserName
}
