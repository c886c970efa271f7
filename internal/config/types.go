// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import "time"

// Config defines the application configuration. Values can be set via environment
// variables prefixed with BOT_ (e.g., BOT_AI_TOKEN) or through config.yaml.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	AI        AIConfig        `mapstructure:"ai"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	VIP       VIPConfig       `mapstructure:"vip"`
	Bot       BotConfig       `mapstructure:"bot"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener serving the admin API and the
// inbound message webhook.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=1m"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GatewayConfig points at the external message gateway used for outbound sends.
type GatewayConfig struct {
	SendURL string        `mapstructure:"send_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=2m"`
}

// AIConfig holds text-generation provider settings. Provider "openrouter" is
// the OpenAI-compatible backend pointed at the OpenRouter endpoint.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"    validate:"oneof=openai openrouter gemini"`
	Token       string        `mapstructure:"token"       validate:"required"`
	BaseURL     string        `mapstructure:"base_url"    validate:"omitempty,url"`
	Model       string        `mapstructure:"model"       validate:"required"`
	MaxTokens   int           `mapstructure:"max_tokens"  validate:"min=1,max=32768"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" validate:"min=0,max=1m"`
}

// NotifyConfig holds ntfy.sh push notification settings. An empty topic
// disables notifications.
type NotifyConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Topic   string        `mapstructure:"topic"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=2m"`
}

// VIPConfig controls VIP escalation behavior and the default contact seeded
// on first run.
type VIPConfig struct {
	// After-hours window boundaries as minutes of day in UTC+7.
	// The window wraps midnight when start > end.
	AfterHoursStart int `mapstructure:"after_hours_start" validate:"min=0,max=1439"`
	AfterHoursEnd   int `mapstructure:"after_hours_end"   validate:"min=0,max=1439"`

	DefaultIdentity     string `mapstructure:"default_identity"`
	DefaultName         string `mapstructure:"default_name"`
	DefaultRelationship string `mapstructure:"default_relationship"`
}

// BotConfig holds persona identity and the canned reply texts.
type BotConfig struct {
	OwnerName     string `mapstructure:"owner_name"     validate:"required"`
	AssistantName string `mapstructure:"assistant_name" validate:"required"`

	SpamNoticeEnabled bool `mapstructure:"spam_notice_enabled"`

	Messages BotMessages `mapstructure:"messages"`
}

// BotMessages holds the outbound texts the routing engine sends on its own,
// outside of AI generation.
type BotMessages struct {
	MenuPrompt    string `mapstructure:"menu_prompt"    validate:"required"`
	MenuAgain     string `mapstructure:"menu_again"     validate:"required"`
	OwnerAck      string `mapstructure:"owner_ack"      validate:"required"`
	AssistantHi   string `mapstructure:"assistant_hi"   validate:"required"`
	InvalidChoice string `mapstructure:"invalid_choice" validate:"required"`
	SpamNotice    string `mapstructure:"spam_notice"    validate:"required"`
	AIFallback    string `mapstructure:"ai_fallback"    validate:"required"`
}

// SchedulerConfig holds configuration for background scheduled tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single named task with a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
