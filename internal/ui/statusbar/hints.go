package statusbar

import "github.com/vibedove/vibedove/internal/types"

// GetHints returns the keybinding hints for the given mode
func GetHints(mode types.Mode) string {
	switch mode {
	case types.ModeNormal:
		return "n: new  s: start  d: done  m: merge  Space: actions  ?: help  q: quit"
	case types.ModeGoto:
		return "g: top  e: end  h: first col  l: last col  Esc: cancel"
	case types.ModeSearch:
		return "Type to search  Enter: confirm  Esc: clear"
	case types.ModeBusy:
		return "working..."
	default:
		return ""
	}
}
