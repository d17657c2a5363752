// Package runtime owns the per-message event loop: clients queue inbound
// messages, the loop reconciles duplicates, resolves the intent and sends the
// reply back through the client's callback.
package runtime

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JeremyDillmann/task-bot-ai/app/intent"
	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

const livenessInterval = 10 * time.Minute

// Message is one inbound chat message, transport-agnostic. Group mention
// tokens are already stripped by the client.
type Message struct {
	Text       string
	SenderID   string
	SenderName string
	ChatID     string
	Group      bool
}

// Event pairs a message with the way back to its conversation.
type Event struct {
	Message Message
	Reply   func(text string) error
}

type Runtime struct {
	resolver  *intent.Resolver
	engine    *tasks.Engine
	events    chan Event
	quit      chan struct{}
	audit     *AuditLog
	sheetLink string
	debug     bool
}

func NewRuntime(resolver *intent.Resolver, engine *tasks.Engine, audit *AuditLog, sheetLink string, debug bool) *Runtime {
	return &Runtime{
		resolver:  resolver,
		engine:    engine,
		events:    make(chan Event, 100),
		quit:      make(chan struct{}),
		audit:     audit,
		sheetLink: sheetLink,
		debug:     debug,
	}
}

func (r *Runtime) QueueEvent(ev Event) {
	select {
	case r.events <- ev:
	default:
		log.Print("⚠️ Event queue is full, dropping event")
	}
}

// Start blocks, processing inbound messages one at a time.
func (r *Runtime) Start() {
	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-r.events:
			r.handleEvent(ev)
		case <-ticker.C:
			log.Print("💓 Bot alive, waiting for messages")
		case <-r.quit:
			return
		}
	}
}

func (r *Runtime) Stop() {
	close(r.quit)
}

func (r *Runtime) handleEvent(ev Event) {
	reply := r.handle(ev.Message)
	if reply == "" {
		return
	}
	if err := ev.Reply(reply); err != nil {
		log.Printf("⚠️ Error sending reply to chat %s: %v", ev.Message.ChatID, err)
	}
}

// handle runs one full request cycle. A panic in any layer is contained
// here: the process must outlive every individual message.
func (r *Runtime) handle(msg Message) (reply string) {
	id := uuid.NewString()[:8]
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ [%s] Recovered from panic: %v", id, rec)
			reply = "Da ist etwas schiefgelaufen. Versuch es bitte noch einmal."
		}
		r.audit.Append(id, msg.SenderName, msg.Text, reply)
	}()

	log.Printf("📨 [%s] %s: %s", id, msg.SenderName, msg.Text)

	ctx := context.Background()

	if quick, ok := r.quickReply(ctx, msg.Text); ok {
		return quick
	}

	// Housekeeping before every read-modify cycle, best effort.
	if removed, err := r.engine.Reconcile(ctx); err != nil {
		log.Printf("⚠️ [%s] Reconcile skipped: %v", id, err)
	} else if removed > 0 {
		log.Printf("🧹 [%s] Removed %d duplicate task(s)", id, removed)
	}

	return r.resolver.Resolve(ctx, msg.Text, msg.SenderName)
}

// quickReply short-circuits the fixed slash commands that need no intent
// resolution.
func (r *Runtime) quickReply(ctx context.Context, text string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "/start", "/hilfe", "/help":
		help := "Ich verwalte eure gemeinsame Aufgabenliste. Schreib mir einfach, z. B.:\n" +
			"• „Milch kaufen bei Rewe“\n" +
			"• „was steht an?“\n" +
			"• „Müll rausbringen erledigt“\n" +
			"• „mach das rückgängig“"
		if r.sheetLink != "" {
			help += "\n\n📊 Tabelle: " + r.sheetLink
		}
		return help, true
	case "/sheet":
		if r.sheetLink == "" {
			return "Es ist keine Tabelle verlinkt.", true
		}
		return "📊 " + r.sheetLink, true
	case "/dump":
		if !r.debug {
			return "", false
		}
		list, err := r.engine.List(ctx, tasks.Filter{})
		if err != nil {
			return "Dump nicht möglich: " + err.Error(), true
		}
		return tasks.FormatTree(list), true
	}
	return "", false
}
