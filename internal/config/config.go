package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	BotToken           string
	GroupID            int64
	LogLevel           string
	PollTimeoutSeconds int
	DatabaseURL        string
	UsersPageSize      int
	LinksPageSize      int
}

func Load() (Config, error) {
	groupID, err := getInt64([]string{"GROUP_ID", "group_id"}, 0)
	if err != nil {
		return Config{}, err
	}

	pollTimeout, err := getInt([]string{"POLL_TIMEOUT_SECONDS"}, 30)
	if err != nil {
		return Config{}, err
	}

	usersPageSize, err := getInt([]string{"USERS_PAGE_SIZE"}, 20)
	if err != nil {
		return Config{}, err
	}

	linksPageSize, err := getInt([]string{"LINKS_PAGE_SIZE"}, 2)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BotToken:           strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		GroupID:            groupID,
		LogLevel:           getString("LOG_LEVEL", "info"),
		PollTimeoutSeconds: pollTimeout,
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		UsersPageSize:      usersPageSize,
		LinksPageSize:      linksPageSize,
	}

	if cfg.PollTimeoutSeconds <= 0 {
		cfg.PollTimeoutSeconds = 30
	}
	if cfg.UsersPageSize <= 0 {
		cfg.UsersPageSize = 20
	}
	if cfg.LinksPageSize <= 0 {
		cfg.LinksPageSize = 2
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getInt64(keys []string, fallback int64) (int64, error) {
	raw, key := getFirstDefined(keys)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getInt(keys []string, fallback int) (int, error) {
	raw, key := getFirstDefined(keys)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getFirstDefined(keys []string) (string, string) {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value, key
		}
	}
	if len(keys) == 0 {
		return "", ""
	}
	return "", keys[0]
}
