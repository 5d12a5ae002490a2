package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/serroba/pdfcraft/internal/dom"
)

// ErrUnknownShortcut is returned for key combinations with no binding.
var ErrUnknownShortcut = errors.New("unknown shortcut")

// Shortcut targets that the session cannot perform itself; the client
// follows up with the matching request.
const (
	IntentExport = "export"
	IntentPrint  = "print"
	IntentFind   = "find"
)

// Targets of history shortcuts.
const (
	TargetUndo = "undo"
	TargetRedo = "redo"
)

var shortcuts = map[string]string{
	"ctrl+z":       TargetUndo,
	"ctrl+shift+z": TargetRedo,
	"ctrl+y":       TargetRedo,
	"ctrl+b":       dom.CmdBold,
	"ctrl+i":       dom.CmdItalic,
	"ctrl+u":       dom.CmdUnderline,
	"ctrl+s":       IntentExport,
	"ctrl+p":       IntentPrint,
	"ctrl+f":       IntentFind,
	"tab":          dom.CmdIndent,
	"shift+tab":    dom.CmdOutdent,
}

// ResolveShortcut maps a key combination such as "Ctrl+Shift+Z" to its
// target. "meta" and "cmd" count as ctrl; modifier order does not matter.
func ResolveShortcut(combo string) (string, error) {
	target, ok := shortcuts[normalizeCombo(combo)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownShortcut, combo)
	}

	return target, nil
}

func normalizeCombo(combo string) string {
	var (
		ctrl, shift bool
		key         string
	)

	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		switch part = strings.TrimSpace(part); part {
		case "ctrl", "control", "meta", "cmd":
			ctrl = true
		case "shift":
			shift = true
		default:
			key = part
		}
	}

	var b strings.Builder

	if ctrl {
		b.WriteString("ctrl+")
	}

	if shift {
		b.WriteString("shift+")
	}

	b.WriteString(key)

	return b.String()
}

// IsIntent reports whether target is handled outside the session.
func IsIntent(target string) bool {
	switch target {
	case IntentExport, IntentPrint, IntentFind:
		return true
	default:
		return false
	}
}
