package statusbar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vibedove/vibedove/internal/types"
	"github.com/vibedove/vibedove/internal/ui/styles"
)

func TestStatusBar_RenderNormalMode(t *testing.T) {
	sb := New(types.ModeNormal, 120, styles.New())

	result := ansi.Strip(sb.Render())

	for _, want := range []string{"NORMAL", "n: new", "s: start", "?: help"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected status bar to contain %q, got: %s", want, result)
		}
	}
}

func TestStatusBar_RenderBusyMode(t *testing.T) {
	sb := New(types.ModeBusy, 80, styles.New())

	result := ansi.Strip(sb.Render())

	if !strings.Contains(result, "BUSY") {
		t.Errorf("Expected BUSY badge, got: %s", result)
	}
}

func TestStatusBar_MessageReplacesHints(t *testing.T) {
	sb := New(types.ModeNormal, 120, styles.New()).
		WithMessage("Started abc1234 on vd/task/abc1234-fix-bug")

	result := ansi.Strip(sb.Render())

	if !strings.Contains(result, "Started abc1234 on vd/task/abc1234-fix-bug") {
		t.Errorf("Expected message, got: %s", result)
	}
	if strings.Contains(result, "n: new") {
		t.Errorf("Hints should be hidden while a message is shown, got: %s", result)
	}
}

func TestStatusBar_Info(t *testing.T) {
	sb := New(types.ModeNormal, 140, styles.New()).WithInfo("vd · base: current")

	result := ansi.Strip(sb.Render())

	if !strings.Contains(result, "vd · base: current") {
		t.Errorf("Expected info text, got: %s", result)
	}
	if w := ansi.StringWidth(result); w != 140 {
		t.Errorf("Expected width 140, got %d", w)
	}
}

func TestStatusBar_NarrowTruncates(t *testing.T) {
	sb := New(types.ModeNormal, 30, styles.New())

	result := ansi.Strip(sb.Render())

	if w := ansi.StringWidth(result); w > 30 {
		t.Errorf("status bar overflowed: width %d", w)
	}
}

func TestGetHints(t *testing.T) {
	tests := []struct {
		mode types.Mode
		want string
	}{
		{types.ModeGoto, "g: top"},
		{types.ModeSearch, "Enter: confirm"},
		{types.ModeBusy, "working"},
	}
	for _, tt := range tests {
		if got := GetHints(tt.mode); !strings.Contains(got, tt.want) {
			t.Errorf("GetHints(%s) = %q, want it to contain %q", tt.mode, got, tt.want)
		}
	}
	if got := GetHints(types.Mode(99)); got != "" {
		t.Errorf("expected no hints for unknown mode, got %q", got)
	}
}
