package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# PanWatch Configuration

[database]
# SQLite database path (defaults to the config directory)
path = ""

[collector]
# Quote feed endpoint
base_url = "http://qt.gtimg.cn/q="
# Per-call timeout in seconds
timeout_seconds = 10

[ui]
# Enable colored output
color_enabled = true
# Time format
time_format = "15:04:05"

[notifications]
# Enable notifications
enabled = false

[notifications.quiet_hours]
# Suppress deliveries inside this local-time window ("HH:MM"); empty disables
start = ""
end = ""

[notifications.retry]
# Delivery retry attempts
attempts = 3
# Initial retry backoff in milliseconds (doubles per attempt)
backoff_base_ms = 500

[notifications.webhook]
enabled = false
url = ""
dedupe_ttl_minutes = 0

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = ""
dedupe_ttl_minutes = 0
`

const credentialsTemplate = `# PanWatch Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[ai]
# OpenAI-compatible endpoint; leave base_url empty for api.openai.com
base_url = ""
api_key = ""
model = "gpt-4o-mini"
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return fmt.Errorf("credentials file not found, created template at %s", path)
}
