package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JeremyDillmann/task-bot-ai/app/clients"
	"github.com/JeremyDillmann/task-bot-ai/app/configs"
	"github.com/JeremyDillmann/task-bot-ai/app/intent"
	"github.com/JeremyDillmann/task-bot-ai/app/models"
	"github.com/JeremyDillmann/task-bot-ai/app/runtime"
	"github.com/JeremyDillmann/task-bot-ai/app/store"
	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load configs: %v", err)
	}

	ctx := context.Background()

	taskStore := buildStore(ctx, cfg.Store)
	ledger := tasks.NewLedger()
	engine := tasks.NewEngine(taskStore, ledger, cfg.Tasks.Policy(), cfg.Tasks.Roster)

	var model models.Interface
	if cfg.LLM.Enabled() {
		model = models.NewLLMClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout())
		log.Printf("🧠 LLM resolution enabled via %s (%s)", cfg.LLM.BaseURL, cfg.LLM.Model)
	} else {
		log.Print("ℹ️ No LLM configured, running with rule-based fallback only")
	}

	resolver := intent.NewResolver(engine, model, intent.Options{
		Plan:   cfg.LLM.Plan,
		Refine: cfg.LLM.Refine,
	})

	audit := runtime.NewAuditLog(cfg.AuditLog)
	rt := runtime.NewRuntime(resolver, engine, audit, cfg.SheetLink, cfg.Debug)

	clientRegistry := clients.NewRegistry()
	if err := cfg.InitializeClients(clientRegistry, rt); err != nil {
		log.Fatalf("❌ Failed to initialize clients: %v", err)
	}
	if len(clientRegistry.GetAll()) == 0 {
		log.Fatal("❌ No active clients, nothing to listen on")
	}

	go rt.Start()
	log.Print("🚀 Task bot is running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Print("👋 Shutting down...")
	rt.Stop()
	clientRegistry.CloseAll()
	if closer, ok := taskStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("⚠️ Error closing store: %v", err)
		}
	}
}

// buildStore sets up the configured backend. A broken backend degrades to
// the unavailable stub instead of aborting startup: the bot can still chat
// and explain that the list is unreachable.
func buildStore(ctx context.Context, cfg configs.StoreConfig) tasks.Store {
	switch cfg.Backend {
	case "sheets":
		creds, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			log.Printf("⚠️ Cannot read sheets credentials: %v", err)
			return store.Unavailable{}
		}
		sheet := cfg.Sheet
		if sheet == "" {
			sheet = "Tasks"
		}
		s, err := store.NewSheetsStore(ctx, creds, cfg.SpreadsheetID, sheet)
		if err != nil {
			log.Printf("⚠️ Cannot connect to Google Sheets: %v", err)
			return store.Unavailable{}
		}
		log.Printf("📊 Using Google Sheets store (%s)", cfg.SpreadsheetID)
		return s
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Printf("⚠️ Cannot open SQLite store: %v", err)
			return store.Unavailable{}
		}
		log.Printf("💾 Using SQLite store (%s)", cfg.SQLitePath)
		return s
	default:
		log.Print("⚠️ No store backend configured, task list is unavailable")
		return store.Unavailable{}
	}
}
