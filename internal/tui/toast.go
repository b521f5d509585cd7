package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToastDuration is how long a toast stays visible.
const ToastDuration = 3 * time.Second

// ToastKind selects the toast colour.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastError
)

// ShowToastMsg displays Message until ToastDuration elapses or another toast
// replaces it.
type ShowToastMsg struct {
	Message string
	Kind    ToastKind
}

// ShowToast returns a command that shows an informational toast.
func ShowToast(message string) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message} }
}

// ShowErrorToast returns a command that shows an error toast.
func ShowErrorToast(message string) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Kind: ToastError} }
}

type ToastModel struct {
	message   string
	kind      ToastKind
	visible   bool
	timestamp time.Time
	width     int
	now       func() time.Time
}

type HideToastMsg struct{ shownAt time.Time }

func NewToastModel() ToastModel { return ToastModel{now: time.Now} }

// Visible reports whether a toast is showing.
func (m ToastModel) Visible() bool { return m.visible }

// Message returns the current toast text.
func (m ToastModel) Message() string { return m.message }

func (m ToastModel) Update(msg tea.Msg) (ToastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		m.message = msg.Message
		m.kind = msg.Kind
		m.visible = true
		if m.now == nil {
			m.now = time.Now
		}
		m.timestamp = m.now()
		shownAt := m.timestamp
		return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg { return HideToastMsg{shownAt: shownAt} })
	case HideToastMsg:
		// A newer toast owns the screen; its own hide is still pending.
		if msg.shownAt.IsZero() || msg.shownAt.Equal(m.timestamp) {
			m.visible = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m ToastModel) View() string {
	if !m.visible {
		return ""
	}
	bg := lipgloss.Color("86")
	if m.kind == ToastError {
		bg = lipgloss.Color("9")
	}
	toast := lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(bg).
		Padding(0, 2).
		MarginRight(2).
		Bold(true).
		Render(m.message)
	if m.width <= 0 {
		return toast
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toast)
}
