package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	t.Cleanup(func() { SetEmojiDisabled(false) })

	SetEmojiDisabled(false)
	if got := GetEmoji("success"); got != "✅" {
		t.Errorf("Expected ✅, got %s", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Error("Expected emoji to be disabled")
	}
	if got := GetEmoji("success"); got != "[OK]" {
		t.Errorf("Expected [OK], got %s", got)
	}
	if got := GetEmoji("missing"); got != "[?]" {
		t.Errorf("Expected [?] for unknown key, got %s", got)
	}
}

func TestForUrgency(t *testing.T) {
	t.Cleanup(func() { SetEmojiDisabled(false) })
	SetEmojiDisabled(true)

	tests := map[string]string{
		"High":   "[HIGH]",
		"Medium": "[MED]",
		"Low":    "[LOW]",
	}
	for urgency, want := range tests {
		if got := ForUrgency(urgency); got != want {
			t.Errorf("Expected %s for %s, got %s", want, urgency, got)
		}
	}
}
