package launch

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/gamectl/internal/profile"
)

// DesktopEntry is the input shape for a generated .desktop file. The
// caller decides where the file lives; this package only renders the
// body.
type DesktopEntry struct {
	Name     string
	Comment  string
	Icon     string
	Target   []string
	Path     string
	Terminal bool
	Delegate bool // defer compilation to launch time
}

// RenderDesktopEntry renders a [Desktop Entry] body whose Exec line is
// either the inline compiled command or a delegate invocation, both
// derived from the same compiled profile.
func RenderDesktopEntry(e DesktopEntry, profileName string, c profile.Compiled) string {
	var exec string
	if e.Delegate {
		exec = RenderDelegate(profileName, e.Target)
	} else {
		exec = RenderInline(c, e.Target)
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", escapeEntryValue(e.Name))
	if e.Comment != "" {
		fmt.Fprintf(&b, "Comment=%s\n", escapeEntryValue(e.Comment))
	}
	if e.Icon != "" {
		fmt.Fprintf(&b, "Icon=%s\n", escapeEntryValue(e.Icon))
	}
	fmt.Fprintf(&b, "Exec=%s\n", exec)
	if e.Path != "" {
		fmt.Fprintf(&b, "Path=%s\n", escapeEntryValue(e.Path))
	}
	fmt.Fprintf(&b, "Terminal=%t\n", e.Terminal)
	b.WriteString("Categories=Game;\n")

	return b.String()
}

func escapeEntryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)

	return s
}
