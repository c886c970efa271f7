package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at configPath (optional)
// 3. BOT_* environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "data/pampam.db")

	v.SetDefault("gateway.send_url", "")
	v.SetDefault("gateway.timeout", 15*time.Second)

	v.SetDefault("ai.provider", "openrouter")
	// Empty default so the BOT_AI_TOKEN env var binds through Unmarshal.
	v.SetDefault("ai.token", "")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.model", "meta-llama/llama-3.3-70b-instruct")
	v.SetDefault("ai.max_tokens", 500)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", 2*time.Minute)
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("ai.retry_delay", 5*time.Second)

	v.SetDefault("notify.base_url", "https://ntfy.sh")
	v.SetDefault("notify.topic", "")
	v.SetDefault("notify.timeout", 10*time.Second)

	// 21:00 through 05:00 in UTC+7, expressed as minutes of day.
	v.SetDefault("vip.after_hours_start", 21*60)
	v.SetDefault("vip.after_hours_end", 5*60)
	v.SetDefault("vip.default_identity", "6285715382142")
	v.SetDefault("vip.default_name", "Viia")
	v.SetDefault("vip.default_relationship", "temen cewe baru")

	v.SetDefault("bot.owner_name", "Farhan")
	v.SetDefault("bot.assistant_name", "Pampam")
	v.SetDefault("bot.spam_notice_enabled", true)

	v.SetDefault("bot.messages.menu_prompt", "Silakan pilih menu:\n1. Chat dengan Farhan (Owner) 👤\n2. Ngobrol dengan Pampam (AI Assistant) 🤖")
	v.SetDefault("bot.messages.menu_again", "Halo lagi! 👋")
	v.SetDefault("bot.messages.owner_ack", "Oke, pesanmu akan diteruskan ke Farhan. Mohon tunggu balasannya ya! 👤")
	v.SetDefault("bot.messages.assistant_hi", "Halo! Aku Pampam, asisten pintarnya Farhan. Yuk ngobrol! 🤖")
	v.SetDefault("bot.messages.invalid_choice", "Pilihan tidak valid. Silakan ketik 1 atau 2.\n1. Chat dengan Farhan\n2. Ngobrol dengan Bot")
	v.SetDefault("bot.messages.spam_notice", "Jangan Spam yaaa 🥲")
	v.SetDefault("bot.messages.ai_fallback", "Waduh, aku lagi error nih. Bisa ulangi lagi ga? 😅")

	v.SetDefault("scheduler.tasks.db_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.db_maintenance.schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks.session_sweep.enabled", true)
	v.SetDefault("scheduler.tasks.session_sweep.schedule", "0 */30 * * * *")
}
