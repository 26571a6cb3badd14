package app

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback data kinds. Every inline button of the bot encodes a Command,
// so the callback payload is parsed exactly once at the router edge.
const (
	kindRegistration = "reg"
	kindLink         = "link"
	kindWork         = "work"
	kindCashOut      = "cash"
	kindWebMasters   = "web"
	kindLinkListing  = "vid"
)

// Command is a decoded callback payload: a kind, an action within that
// kind, the entity it targets and an optional argument such as a page
// number or listing period.
type Command struct {
	Kind   string
	Action string
	ID     int64
	Arg    string
}

func (c Command) String() string {
	parts := []string{c.Kind, c.Action, strconv.FormatInt(c.ID, 10)}
	if c.Arg != "" {
		parts = append(parts, c.Arg)
	}
	return strings.Join(parts, ":")
}

// ParseCommand decodes callback data. Payloads that do not match the
// kind:action:id[:arg] shape are reported as malformed, stale buttons
// from older bot versions fall into that bucket.
func ParseCommand(data string) (Command, error) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Command{}, fmt.Errorf("malformed callback data %q", data)
	}

	cmd := Command{Kind: parts[0], Action: parts[1]}
	if cmd.Kind == "" || cmd.Action == "" {
		return Command{}, fmt.Errorf("malformed callback data %q", data)
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Command{}, fmt.Errorf("malformed callback id in %q", data)
	}
	cmd.ID = id

	if len(parts) == 4 {
		cmd.Arg = parts[3]
	}
	return cmd, nil
}

func (c Command) ArgInt(fallback int) int {
	if c.Arg == "" {
		return fallback
	}
	value, err := strconv.Atoi(c.Arg)
	if err != nil {
		return fallback
	}
	return value
}
