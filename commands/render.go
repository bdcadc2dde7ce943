package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/config"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

type styles struct {
	kind   lipgloss.Style
	slot   lipgloss.Style
	token  lipgloss.Style
	text   lipgloss.Style
	pos    lipgloss.Style
	err    lipgloss.Style
	header lipgloss.Style
	branch lipgloss.Style
}

// newStyles builds styles bound to w. With color off every style is plain.
func newStyles(w io.Writer, color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		kind:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		slot:   r.NewStyle().Foreground(colorMuted).Italic(true),
		token:  r.NewStyle().Foreground(colorAccent),
		text:   r.NewStyle().Foreground(colorSecondary),
		pos:    r.NewStyle().Foreground(colorMuted),
		err:    r.NewStyle().Bold(true).Foreground(colorError),
		header: r.NewStyle().Bold(true).Underline(true),
		branch: r.NewStyle().Foreground(colorMuted),
	}
}

// writeOutline prints o in the given format.
func writeOutline(w io.Writer, o *ast.Outline, format string, st styles) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(w, o)
	case config.FormatYAML:
		return writeYAML(w, o)
	}
	var sb strings.Builder
	renderTree(&sb, o, "", "", st)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// renderTree draws o and its children with box-drawing branches.
func renderTree(sb *strings.Builder, o *ast.Outline, lead, childLead string, st styles) {
	sb.WriteString(st.branch.Render(lead))
	if o.Slot != "" {
		sb.WriteString(st.slot.Render(o.Slot + ":"))
		sb.WriteByte(' ')
	}
	switch {
	case o.Kind == "Token":
		sb.WriteString(st.token.Render(o.Token))
		sb.WriteByte(' ')
		sb.WriteString(st.text.Render(fmt.Sprintf("%q", o.Text)))
		sb.WriteByte(' ')
		sb.WriteString(st.pos.Render(fmt.Sprintf("%d:%d", o.Line, o.Column)))
	case strings.HasPrefix(o.Kind, "Error"):
		sb.WriteString(st.err.Render(o.Kind))
		if len(o.Expected) > 0 {
			sb.WriteString(st.pos.Render(" expected " + strings.Join(o.Expected, " ")))
		}
	default:
		sb.WriteString(st.kind.Render(o.Kind))
	}
	sb.WriteByte('\n')
	for i, c := range o.Children {
		if i == len(o.Children)-1 {
			renderTree(sb, c, childLead+"└── ", childLead+"    ", st)
		} else {
			renderTree(sb, c, childLead+"├── ", childLead+"│   ", st)
		}
	}
}

// column pads s to width cells.
func column(st lipgloss.Style, s string, width int) string {
	return st.Width(width).Render(s)
}
