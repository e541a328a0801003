package overlay

import (
	"strings"
	"testing"
)

func confirmResult(t *testing.T, c *ConfirmDialog, k string) (string, ConfirmResult) {
	t.Helper()
	_, cmd := c.Update(key(k))
	got := msgs(cmd)
	if len(got) != 1 {
		t.Fatalf("key %q: got %d messages, want 1", k, len(got))
	}
	sel, ok := got[0].(SelectionMsg)
	if !ok {
		t.Fatalf("key %q: got %T, want SelectionMsg", k, got[0])
	}
	return sel.Key, sel.Value.(ConfirmResult)
}

func TestConfirmDialog_Answers(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"n", false},
		{"esc", false},
		{"enter", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := NewConfirmDialog("Delete", "Delete abc1234?", "abc1234")
			k, res := confirmResult(t, c, tt.key)
			if res.Confirmed != tt.want {
				t.Errorf("Confirmed = %v, want %v", res.Confirmed, tt.want)
			}
			if res.Payload != "abc1234" {
				t.Errorf("Payload = %v, want abc1234", res.Payload)
			}
			wantKey := "no"
			if tt.want {
				wantKey = "yes"
			}
			if k != wantKey {
				t.Errorf("Key = %q, want %q", k, wantKey)
			}
		})
	}
}

func TestConfirmDialog_EnterUsesSelection(t *testing.T) {
	c := NewConfirmDialog("Merge", "Merge?", nil)
	c.Update(key("l"))
	if _, res := confirmResult(t, c, "enter"); !res.Confirmed {
		t.Error("enter after moving right should confirm")
	}

	c.Update(key("h"))
	if _, res := confirmResult(t, c, "enter"); res.Confirmed {
		t.Error("enter after moving left should decline")
	}
}

func TestConfirmDialog_View(t *testing.T) {
	c := NewConfirmDialog("Cancel task", "Cancel abc1234 and drop its branch?", nil)
	view := plain(c)
	for _, want := range []string{"Cancel abc1234 and drop its branch?", "[n] No", "[y] Yes"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if c.Title() != "Cancel task" {
		t.Errorf("Title() = %q", c.Title())
	}
}
