package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SidebarWidth is the rendered width of an open sidebar, border included.
const SidebarWidth = 30

// FileSidebar lists the PDFs the backend reports as uploaded.
type FileSidebar struct {
	files  []string
	open   bool
	height int
	offset int

	headerStyle lipgloss.Style
	itemStyle   lipgloss.Style
	emptyStyle  lipgloss.Style
	hintStyle   lipgloss.Style
	boxStyle    lipgloss.Style
}

// NewFileSidebar returns an open, empty sidebar.
func NewFileSidebar() FileSidebar {
	return FileSidebar{
		open:        true,
		files:       []string{},
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		itemStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		emptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		hintStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
	}
}

// SetFiles replaces the listed files.
func (s *FileSidebar) SetFiles(files []string) {
	s.files = append([]string(nil), files...)
	s.offset = 0
}

// Files returns the listed files.
func (s FileSidebar) Files() []string { return s.files }

// SetHeight sets the number of rows available.
func (s *FileSidebar) SetHeight(h int) { s.height = h }

// Toggle shows or hides the sidebar.
func (s *FileSidebar) Toggle() { s.open = !s.open }

// IsOpen reports whether the sidebar is shown.
func (s FileSidebar) IsOpen() bool { return s.open }

// Width is the horizontal space the sidebar takes, zero when closed.
func (s FileSidebar) Width() int {
	if !s.open {
		return 0
	}
	return SidebarWidth
}

// ScrollDown moves the list by one row.
func (s *FileSidebar) ScrollDown() {
	if s.offset < len(s.files)-s.visibleRows() {
		s.offset++
	}
}

// ScrollUp moves the list back by one row.
func (s *FileSidebar) ScrollUp() {
	if s.offset > 0 {
		s.offset--
	}
}

func (s FileSidebar) visibleRows() int {
	// header, blank line, footer hint
	rows := s.height - 3
	if rows < 1 {
		return len(s.files)
	}
	return rows
}

func (s FileSidebar) View() string {
	if !s.open {
		return ""
	}
	inner := SidebarWidth - 3

	var b strings.Builder
	b.WriteString(s.headerStyle.Render(fmt.Sprintf("Uploaded PDFs (%d)", len(s.files))) + "\n\n")
	if len(s.files) == 0 {
		b.WriteString(s.emptyStyle.Render("No PDFs uploaded yet.") + "\n")
	} else {
		end := min(s.offset+s.visibleRows(), len(s.files))
		for _, name := range s.files[s.offset:end] {
			b.WriteString(s.itemStyle.Render("• "+truncate(name, inner-2)) + "\n")
		}
		if end < len(s.files) {
			b.WriteString(s.hintStyle.Render(fmt.Sprintf("… %d more", len(s.files)-end)) + "\n")
		}
	}
	b.WriteString(s.hintStyle.Render("ctrl+u: upload PDFs"))

	style := s.boxStyle.Width(inner)
	if s.height > 0 {
		style = style.Height(s.height)
	}
	return style.Render(b.String())
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
