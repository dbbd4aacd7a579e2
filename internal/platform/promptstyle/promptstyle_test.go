package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	if got := ApplySystem("  ", ModeJSON); got != "" {
		t.Fatalf("empty prompt should stay empty, got %q", got)
	}

	once := ApplySystem("Plan a week.", ModeJSON)
	if !strings.HasPrefix(once, marker) || !strings.HasSuffix(once, "Plan a week.") {
		t.Fatalf("unexpected wrapping: %q", once)
	}
	if !strings.Contains(once, "JSON object") {
		t.Fatalf("json mode should ask for a JSON object")
	}
	if twice := ApplySystem(once, ModeJSON); twice != once {
		t.Fatalf("ApplySystem should be idempotent")
	}

	chat := ApplySystem("Answer questions.", ModeChat)
	if strings.Contains(chat, "JSON object") {
		t.Fatalf("chat mode should not ask for JSON")
	}
}
