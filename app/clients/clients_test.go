package clients

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestStripMention(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		mentioned bool
	}{
		{"plain mention", "@taskbot Milch kaufen", "Milch kaufen", true},
		{"mention with comma", "@taskbot, was steht an?", "was steht an?", true},
		{"case insensitive", "@TaskBot zeig die Liste", "zeig die Liste", true},
		{"no mention", "Milch kaufen", "Milch kaufen", false},
		{"mention only", "@taskbot", "", true},
		{"leading whitespace", "  @taskbot hallo", "hallo", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, mentioned := stripMention(tc.text, "taskbot")
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.mentioned, mentioned)
		})
	}
}

func TestCreateClientRejectsUnknownAndDisabled(t *testing.T) {
	_, err := CreateClient(Config{Type: "slack", Enabled: true})
	assert.Error(t, err)

	_, err = CreateClient(Config{Type: "telegram", Enabled: false})
	assert.Error(t, err)
}

func TestCreateClientRequiresToken(t *testing.T) {
	_, err := CreateClient(Config{Type: "telegram", Enabled: true, Config: map[string]string{}})
	assert.Error(t, err)

	_, err = CreateClient(Config{Type: "discord", Enabled: true, Config: map[string]string{}})
	assert.Error(t, err)
}

func TestSenderName(t *testing.T) {
	assert.Equal(t, "", senderName(nil))
	assert.Equal(t, "Jeremy", senderName(&tgbotapi.User{FirstName: "Jeremy", UserName: "jdill"}))
	assert.Equal(t, "jdill", senderName(&tgbotapi.User{UserName: "jdill"}))
}

func TestRegistryCopiesClients(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.GetAll())

	got := r.GetAll()
	got = append(got, nil)
	assert.Empty(t, r.GetAll())
	_ = got
}
