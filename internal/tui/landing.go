package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LandingSection is a tab on the landing screen.
type LandingSection int

const (
	FeaturesSection LandingSection = iota
	HowItWorksSection
	UseCasesSection
	AboutSection
	FAQSection
)

var sectionTitles = []string{"Features", "How It Works", "Use Cases", "About", "FAQ"}

func (s LandingSection) String() string {
	if int(s) < 0 || int(s) >= len(sectionTitles) {
		return "unknown"
	}
	return sectionTitles[s]
}

// Card is a titled paragraph on the landing screen.
type Card struct {
	Title string
	Body  string
}

var (
	features = []Card{
		{Title: "Instant PDF Upload", Body: "Upload your PDFs and get them processed instantly for Q&A."},
		{Title: "Contextual Answers", Body: "Ask questions and receive detailed, context-rich answers from your documents."},
		{Title: "File Management", Body: "See all your uploaded PDFs in one place and switch between them easily."},
	}
	steps = []string{
		"Upload your PDF document.",
		"Ask any question related to the content.",
		"Get instant, accurate answers with context.",
		"Manage and revisit your uploaded files anytime.",
	}
	useCases = []Card{
		{Title: "Students & Researchers", Body: "Quickly extract information from academic papers, textbooks, and research PDFs."},
		{Title: "Professionals", Body: "Find answers in manuals, reports, and business documents without reading everything."},
		{Title: "Legal & Compliance", Body: "Search through contracts, policies, and legal PDFs for specific clauses and information."},
		{Title: "Anyone with PDFs!", Body: "Antom is for anyone who wants to get more from their documents, fast."},
	}
	about = "Antom leverages state-of-the-art AI to help you interact with your documents in a whole new way. Built for speed, accuracy, and ease of use."
	faq   = []Card{
		{Title: "Is my data secure?", Body: "All files are processed securely and never shared."},
		{Title: "What file types are supported?", Body: "Currently, only PDF files are supported."},
		{Title: "How fast are answers?", Body: "Most answers are generated in seconds, depending on document size."},
	}
)

// StartChatMsg is emitted when the user leaves the landing screen.
type StartChatMsg struct{}

// LandingKeyMap lists the landing screen bindings.
type LandingKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Start key.Binding
}

// DefaultLandingKeys returns the standard landing bindings.
func DefaultLandingKeys() LandingKeyMap {
	return LandingKeyMap{
		Next:  key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("→/tab", "next")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("←", "previous")),
		Start: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "start chatting")),
	}
}

// LandingModel is the static screen shown before chatting starts.
type LandingModel struct {
	section LandingSection
	width   int
	height  int
	keys    LandingKeyMap

	titleStyle     lipgloss.Style
	taglineStyle   lipgloss.Style
	headerStyle    lipgloss.Style
	hintStyle      lipgloss.Style
	borderStyle    lipgloss.Style
	tabStyle       lipgloss.Style
	activeTabStyle lipgloss.Style
	ctaStyle       lipgloss.Style
}

// NewLandingModel returns a landing screen showing the features tab.
func NewLandingModel() LandingModel {
	return LandingModel{
		section:        FeaturesSection,
		keys:           DefaultLandingKeys(),
		titleStyle:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		taglineStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		headerStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		hintStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		borderStyle:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("86")).Padding(1, 2),
		tabStyle:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		activeTabStyle: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("86")).Bold(true),
		ctaStyle:       lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("11")).Bold(true),
	}
}

// Section returns the visible tab.
func (m LandingModel) Section() LandingSection { return m.section }

func (m LandingModel) Update(msg tea.Msg) (LandingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			m.section = (m.section + 1) % LandingSection(len(sectionTitles))
		case key.Matches(msg, m.keys.Prev):
			m.section = (m.section + LandingSection(len(sectionTitles)) - 1) % LandingSection(len(sectionTitles))
		case key.Matches(msg, m.keys.Start):
			return m, func() tea.Msg { return StartChatMsg{} }
		}
	}
	return m, nil
}

func (m LandingModel) View() string {
	boxWidth := 64
	if m.width > 0 && m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	textWidth := boxWidth - 8

	var b strings.Builder
	b.WriteString(m.titleStyle.Render("Antom") + "\n")
	b.WriteString(m.taglineStyle.Render("Your AI-powered PDF Q&A Assistant") + "\n\n")
	b.WriteString(m.renderTabBar() + "\n\n")
	b.WriteString(m.renderSection(textWidth))
	b.WriteString("\n" + m.headerStyle.Render("Ready to get answers from your PDFs?") + "\n\n")
	b.WriteString(m.ctaStyle.Render("Start Chatting") + "\n\n")
	b.WriteString(m.hintStyle.Render("←/→: sections  Enter: start chatting  Ctrl+C: quit"))

	box := m.borderStyle.Width(boxWidth).Render(b.String())
	return Center(box, m.width, m.height)
}

func (m LandingModel) renderTabBar() string {
	var pieces []string
	for i, title := range sectionTitles {
		if LandingSection(i) == m.section {
			pieces = append(pieces, m.activeTabStyle.Render(title))
		} else {
			pieces = append(pieces, m.tabStyle.Render(title))
		}
	}
	return strings.Join(pieces, " ")
}

func (m LandingModel) renderSection(width int) string {
	var s strings.Builder
	switch m.section {
	case FeaturesSection:
		m.writeCards(&s, features, width)
	case HowItWorksSection:
		for i, step := range steps {
			s.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	case UseCasesSection:
		m.writeCards(&s, useCases, width)
	case AboutSection:
		for _, line := range WrapText(about, width) {
			s.WriteString(line + "\n")
		}
	case FAQSection:
		m.writeCards(&s, faq, width)
	}
	return s.String()
}

func (m LandingModel) writeCards(s *strings.Builder, cards []Card, width int) {
	for i, c := range cards {
		if i > 0 {
			s.WriteString("\n")
		}
		s.WriteString(m.headerStyle.Render(c.Title) + "\n")
		for _, line := range WrapText(c.Body, width-2) {
			s.WriteString("  " + line + "\n")
		}
	}
}

// Center pads content so it sits in the middle of a width x height area.
// Zero dimensions leave that axis unpadded.
func Center(content string, width, height int) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	contentWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > contentWidth {
			contentWidth = w
		}
	}
	top := 0
	if height > 0 {
		top = max((height-len(lines))/2, 0)
	}
	left := 0
	if width > 0 {
		left = max((width-contentWidth)/2, 0)
	}

	var out strings.Builder
	out.WriteString(strings.Repeat("\n", top))
	pad := strings.Repeat(" ", left)
	for i, line := range lines {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(pad + line)
	}
	return out.String()
}

// WrapText breaks text on word boundaries so no line exceeds width, except
// for single words longer than width.
func WrapText(text string, width int) []string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return []string{text}
	}
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case lipgloss.Width(current)+1+lipgloss.Width(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
