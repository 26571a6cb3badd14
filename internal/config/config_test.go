package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("GROUP_ID", "")
	t.Setenv("group_id", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("POLL_TIMEOUT_SECONDS", "")
	t.Setenv("USERS_PAGE_SIZE", "")
	t.Setenv("LINKS_PAGE_SIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.PollTimeoutSeconds != 30 {
		t.Fatalf("expected default poll timeout 30, got %d", cfg.PollTimeoutSeconds)
	}
	if cfg.UsersPageSize != 20 {
		t.Fatalf("expected default users page size 20, got %d", cfg.UsersPageSize)
	}
	if cfg.LinksPageSize != 2 {
		t.Fatalf("expected default links page size 2, got %d", cfg.LinksPageSize)
	}
}

func TestLoadGroupIDFallbackKey(t *testing.T) {
	t.Setenv("GROUP_ID", "")
	t.Setenv("group_id", "-100200300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GroupID != -100200300 {
		t.Fatalf("expected group id from lowercase key, got %d", cfg.GroupID)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("GROUP_ID", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed GROUP_ID")
	}
}
