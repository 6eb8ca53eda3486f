package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents application configuration
type Config struct {
	// Slack configuration
	Slack SlackConfig

	// Gemini configuration (optional; summaries degrade without it)
	Gemini GeminiConfig

	// Store configuration
	Store StoreConfig

	// Summary configuration
	Summary SummaryConfig

	// API configuration
	API APIConfig

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig

	// Debug mode
	Debug bool
}

// SlackConfig contains Slack workspace configuration
type SlackConfig struct {
	BotToken      string
	BotUserID     string // resolved via auth.test at startup when empty
	WorkspaceID   string
	WorkspaceName string
}

// GeminiConfig contains Gemini API configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// StoreConfig contains persistence configuration
type StoreConfig struct {
	DBPath string
}

// SummaryConfig contains summary defaults
type SummaryConfig struct {
	DefaultHours int
}

// APIConfig contains HTTP server ports
type APIConfig struct {
	EventPort       int // inbound Slack commands/events
	DiagnosticsPort int // ledger/summary diagnostics
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("SUMMARYBOT_DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".summarybot", "summarybot.db")
	}

	defaultHours := 24
	if val := os.Getenv("SUMMARY_DEFAULT_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			defaultHours = parsed
		}
	}

	eventPort := 8080
	if val := os.Getenv("EVENT_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			eventPort = parsed
		}
	}

	diagPort := 9876
	if val := os.Getenv("DIAGNOSTICS_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			diagPort = parsed
		}
	}

	workspaceName := os.Getenv("SLACK_WORKSPACE_NAME")
	if workspaceName == "" {
		workspaceName = "default"
	}

	// Load prompts from YAML; a broken file falls back to defaults
	promptsConfigPath := os.Getenv("PROMPTS_CONFIG_PATH")
	promptsConfig, err := LoadPromptsConfig(promptsConfigPath)
	if err != nil {
		fmt.Printf("[Config] Failed to load prompts config: %v, using defaults\n", err)
		promptsConfig = DefaultPromptsConfig()
	}

	return &Config{
		Slack: SlackConfig{
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			BotUserID:     os.Getenv("SLACK_BOT_USER_ID"),
			WorkspaceID:   os.Getenv("SLACK_WORKSPACE_ID"),
			WorkspaceName: workspaceName,
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   os.Getenv("GEMINI_MODEL"),
			BaseURL: os.Getenv("GEMINI_BASE_URL"),
		},
		Store: StoreConfig{
			DBPath: dbPath,
		},
		Summary: SummaryConfig{
			DefaultHours: defaultHours,
		},
		API: APIConfig{
			EventPort:       eventPort,
			DiagnosticsPort: diagPort,
		},
		Prompts: promptsConfig,
		Debug:   os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return &ConfigError{Field: "SLACK_BOT_TOKEN", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
