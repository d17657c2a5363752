package configs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/JeremyDillmann/task-bot-ai/app/clients"
	"github.com/JeremyDillmann/task-bot-ai/app/runtime"
	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

type Config struct {
	Clients   []clients.Config `yaml:"clients,omitempty"`
	LLM       LLMConfig        `yaml:"llm"`
	Store     StoreConfig      `yaml:"store"`
	Tasks     TasksConfig      `yaml:"tasks"`
	SheetLink string           `yaml:"sheet_link,omitempty"`
	AuditLog  string           `yaml:"audit_log,omitempty"`
	Debug     bool             `yaml:"debug,omitempty"`
}

type LLMConfig struct {
	BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
	APIKey         string `yaml:"api_key,omitempty"`
	Model          string `yaml:"model,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	Plan           bool   `yaml:"plan,omitempty"`
	Refine         bool   `yaml:"refine,omitempty"`
}

func (lc LLMConfig) Timeout() time.Duration {
	return time.Duration(lc.TimeoutSeconds) * time.Second
}

// Enabled reports whether LLM resolution is configured at all; without it
// the bot runs on the deterministic fallback rules alone.
func (lc LLMConfig) Enabled() bool {
	return lc.BaseURL != ""
}

type StoreConfig struct {
	Backend         string `yaml:"backend" validate:"omitempty,oneof=sheets sqlite"`
	SpreadsheetID   string `yaml:"spreadsheet_id,omitempty"`
	Sheet           string `yaml:"sheet,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	SQLitePath      string `yaml:"sqlite_path,omitempty"`
}

type TasksConfig struct {
	Roster        []string `yaml:"roster" validate:"min=1"`
	DefaultPolicy string   `yaml:"default_policy,omitempty" validate:"omitempty,oneof=shared requester"`
}

func (tc TasksConfig) Policy() tasks.Policy {
	if tc.DefaultPolicy == "requester" {
		return tasks.PolicyRequester
	}
	return tasks.PolicyShared
}

// LoadConfig reads the YAML file at path, expanding ${ENV_VAR} references so
// secrets never need to live in the file itself.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configs file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configs: %w", err)
	}

	switch c.Store.Backend {
	case "sheets":
		if c.Store.SpreadsheetID == "" || c.Store.CredentialsFile == "" {
			return fmt.Errorf("sheets backend needs spreadsheet_id and credentials_file")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite backend needs sqlite_path")
		}
	}

	return nil
}

func (c *Config) InitializeClients(clientRegistry *clients.Registry, rt *runtime.Runtime) error {
	if len(c.Clients) == 0 {
		log.Println("ℹ️ No clients configured")
		return nil
	}

	for _, clientCfg := range c.Clients {
		if !clientCfg.Enabled {
			log.Printf("⏭️ Client %s is disabled, skipping\n", clientCfg.Type)
			continue
		}

		log.Printf("🔌 Initializing %s client...\n", clientCfg.Type)
		client, err := clients.CreateClient(clientCfg)
		if err != nil {
			return fmt.Errorf("failed to create %s client: %w", clientCfg.Type, err)
		}

		if err := clientRegistry.Register(client, rt); err != nil {
			return fmt.Errorf("failed to register %s client: %w", clientCfg.Type, err)
		}

		log.Printf("✅ %s client initialized\n", clientCfg.Type)
	}

	return nil
}
