package tui

import (
	"fmt"
	"strings"
)

// View renders the model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("HIVEDECK · processes"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	if m.view.Loading {
		b.WriteString(placeholderStyle.Render("Loading processes..."))
	} else {
		b.WriteString(baseStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.view.Err != nil {
		b.WriteString(errorStyle.Render("⚠ " + m.view.Err.Error()))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	if m.confirming {
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Terminate process %d? (y/n)", m.confirmPID)))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) header() string {
	var parts []string
	if m.opts.Host != "" {
		parts = append(parts, m.opts.Host)
	}
	if m.opts.Source != "" {
		parts = append(parts, m.opts.Source)
	}
	if !m.view.Loading {
		parts = append(parts, fmt.Sprintf("%d processes", len(m.view.Rows)))
	}
	parts = append(parts, fmt.Sprintf("sort: %s%s", m.view.Sort.Key, m.view.Sort.Indicator(m.view.Sort.Key)))
	if !m.view.UpdatedAt.IsZero() {
		parts = append(parts, "updated "+m.view.UpdatedAt.Format("15:04:05"))
	}
	return strings.Join(parts, " | ")
}
