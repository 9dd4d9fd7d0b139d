package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OWNER_ID", "")
	t.Setenv("INITIAL_ADMINS", "")
	t.Setenv("COMMANDS_PATH", "")
	t.Setenv("CHANNELS_PATH", "")
	t.Setenv("HEALTH_ADDR", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DatabaseURL != "bot_database.db" {
		t.Fatalf("DatabaseURL = %q, want bot_database.db", cfg.DatabaseURL)
	}
	if cfg.CopyTTL != 5*time.Minute {
		t.Fatalf("CopyTTL = %v, want 5m", cfg.CopyTTL)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Fatalf("UpstreamTimeout = %v, want 10s", cfg.UpstreamTimeout)
	}
	if cfg.InlineLimit != 4000 {
		t.Fatalf("InlineLimit = %d, want 4000", cfg.InlineLimit)
	}
	if cfg.HealthAddr != ":8080" {
		t.Fatalf("HealthAddr = %q, want :8080", cfg.HealthAddr)
	}
	if len(cfg.Commands) != 16 {
		t.Fatalf("default catalog has %d commands, want 16", len(cfg.Commands))
	}
	if len(cfg.ForceChannels) != 2 {
		t.Fatalf("default force channels = %v, want 2", cfg.ForceChannels)
	}
	if cfg.ForceChannels[0].ID == 0 || cfg.ForceChannels[0].Link == "" || cfg.ForceChannels[0].Name == "" {
		t.Fatalf("default channel incomplete: %+v", cfg.ForceChannels[0])
	}
	if cfg.Branding.Developer == "" || cfg.Branding.PoweredBy == "" {
		t.Fatalf("branding defaults missing: %+v", cfg.Branding)
	}
	if !strings.Contains(cfg.LookupFooter, cfg.Branding.Developer) || !strings.Contains(cfg.LookupFooter, cfg.Branding.PoweredBy) {
		t.Fatalf("LookupFooter %q missing branding", cfg.LookupFooter)
	}

	num, ok := cfg.Commands["num"]
	if !ok {
		t.Fatalf("default catalog missing num")
	}
	if !strings.Contains(num.URL, "{}") {
		t.Fatalf("num URL %q has no placeholder", num.URL)
	}
	if len(num.ExtraDenylist) == 0 {
		t.Fatalf("num extra denylist should not be empty")
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "BOT_TOKEN") {
		t.Fatalf("Load error = %v, want BOT_TOKEN is required", err)
	}
}

func TestLoadParsesAdminList(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_ID", "42")
	t.Setenv("INITIAL_ADMINS", "42, 77,nonsense,0")
	t.Setenv("COMMANDS_PATH", "")
	t.Setenv("CHANNELS_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OwnerID != 42 {
		t.Fatalf("OwnerID = %d, want 42", cfg.OwnerID)
	}
	if len(cfg.InitialAdmins) != 2 || cfg.InitialAdmins[0] != 42 || cfg.InitialAdmins[1] != 77 {
		t.Fatalf("InitialAdmins = %v, want [42 77]", cfg.InitialAdmins)
	}
}

func TestLoadCatalogOverride(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "commands.json")
	catalog := `{
		"ping": {
			"url": "https://example.test/q={}",
			"param": "anything",
			"log_channel_id": -100123,
			"description": "Ping lookup",
			"extra_denylist": ["spam"]
		}
	}`
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	channelsPath := filepath.Join(dir, "channels.json")
	channels := `[{"name": "Updates", "link": "https://t.me/updates", "id": -100456}]`
	if err := os.WriteFile(channelsPath, []byte(channels), 0o600); err != nil {
		t.Fatalf("write channels: %v", err)
	}

	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("COMMANDS_PATH", catalogPath)
	t.Setenv("CHANNELS_PATH", channelsPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Commands) != 1 {
		t.Fatalf("override catalog has %d commands, want 1", len(cfg.Commands))
	}
	ping := cfg.Commands["ping"]
	if ping.LogChannelID != -100123 || ping.Param != "anything" {
		t.Fatalf("unexpected ping command: %+v", ping)
	}
	if len(cfg.ForceChannels) != 1 || cfg.ForceChannels[0].ID != -100456 {
		t.Fatalf("unexpected channels: %+v", cfg.ForceChannels)
	}
}
