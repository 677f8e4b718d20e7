package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		return editRune(text, " ")
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// editKey is editRune for a key message. Pasted text arrives as one
// KeyRunes message and is appended whole, clamped to maxInputLen.
func editKey(text string, msg tea.KeyMsg) string {
	if msg.Type != tea.KeyRunes || msg.Alt {
		return editRune(text, msg.String())
	}
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	runes := msg.Runes
	if len(runes) > room {
		runes = runes[:room]
	}
	return text + strings.ReplaceAll(string(runes), "\n", " ")
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderInput renders a labelled single-line input. The cursor blinks with
// the shimmer frame when focused; mask hides the value (passwords).
func renderInput(label, value, placeholder string, focused, mask bool, animFrame int) string {
	shown := value
	if mask {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	prefix := "  "
	lbl := labelStyle.Render(label)
	if focused {
		prefix = inputPromptStyle.Render("> ")
		lbl = selectedStyle.Render(label)
	}
	cursor := ""
	if focused && (animFrame/4)%2 == 0 {
		cursor = accentStyle.Render("█")
	}
	if shown == "" {
		if focused {
			return prefix + lbl + "  " + cursor
		}
		return prefix + lbl + "  " + inputPlaceholderStyle.Render(placeholder)
	}
	style := dimStyle
	if focused {
		style = normalStyle
	}
	return prefix + lbl + "  " + style.Render(shown) + cursor
}

// scrollWindow returns the [start, end) range of rows to draw so the
// cursor stays visible in a window of size rows.
func scrollWindow(cursor, total, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := 0
	if cursor >= size {
		start = cursor - size + 1
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}
