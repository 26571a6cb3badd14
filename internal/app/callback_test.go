package app

import "testing"

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("link:confirm:42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != kindLink || cmd.Action != "confirm" || cmd.ID != 42 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = ParseCommand("vid:list:7:week")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Arg != "week" {
		t.Fatalf("expected arg week, got %q", cmd.Arg)
	}
}

func TestParseCommandMalformed(t *testing.T) {
	for _, data := range []string{"", "link", "link:confirm", "link:confirm:abc", "a:b:1:2:3", ":confirm:1"} {
		if _, err := ParseCommand(data); err == nil {
			t.Fatalf("expected error for %q", data)
		}
	}
}

func TestCommandRoundTrip(t *testing.T) {
	original := Command{Kind: kindWebMasters, Action: "root", ID: 0, Arg: "3"}

	parsed, err := ParseCommand(original.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != original {
		t.Fatalf("round trip mismatch: %+v != %+v", parsed, original)
	}
	if parsed.ArgInt(1) != 3 {
		t.Fatalf("expected page 3, got %d", parsed.ArgInt(1))
	}
}
