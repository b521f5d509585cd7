package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"antom-cli/cmd/utils"
	"antom-cli/internal/session"
	uitk "antom-cli/internal/tui"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

var (
	assistantPrompt = "🤖 Antom:"
	userPrompt      = "> "
)

const gap = "\n\n"

const chatHelpText = `Commands:
  /attach [path]     stage a PDF for the next question (no path: open the picker)
  /detach            remove the staged PDF
  /upload [path...]  upload PDFs to the server (no path: open the picker)
  /files             list the PDFs the server has ingested
  /probe             test the connection to the server
  /copy              copy the last answer to the clipboard
  /clear             clear the conversation on screen
  /help              show this help
  /exit              quit

Keys: Enter send | Ctrl+O attach | Ctrl+U upload | Tab files panel | Esc cancel request | Up/Down history | PgUp/PgDn scroll`

type pickerMode int

const (
	pickerClosed pickerMode = iota
	pickerAttach
	pickerUpload
)

// notice is a local line shown after the transcript message with ID after.
// Notices are screen-only and never part of the session.
type notice struct {
	after   int64
	text    string
	isError bool
}

type chatKeyMap struct {
	Send          key.Binding
	Quit          key.Binding
	Cancel        key.Binding
	Attach        key.Binding
	Upload        key.Binding
	Detach        key.Binding
	ToggleSidebar key.Binding
	HistoryPrev   key.Binding
	HistoryNext   key.Binding
	FilesUp       key.Binding
	FilesDown     key.Binding
}

func defaultChatKeys() chatKeyMap {
	return chatKeyMap{
		Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel request")),
		Attach:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "attach PDF")),
		Upload:        key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "upload PDFs")),
		Detach:        key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove attachment")),
		ToggleSidebar: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "files panel")),
		HistoryPrev:   key.NewBinding(key.WithKeys("up")),
		HistoryNext:   key.NewBinding(key.WithKeys("down")),
		FilesUp:       key.NewBinding(key.WithKeys("ctrl+p")),
		FilesDown:     key.NewBinding(key.WithKeys("ctrl+n")),
	}
}

type chatModel struct {
	ctrl *Controller
	keys chatKeyMap

	landing  uitk.LandingModel
	sidebar  uitk.FileSidebar
	toast    uitk.ToastModel
	spin     spinner.Model
	viewport viewport.Model
	textarea textarea.Model
	picker   filepicker.Model

	pickerMode pickerMode
	selection  []string
	activity   string

	notices   []notice
	history   []string
	histIndex int

	renderer      *glamour.TermRenderer
	rendererWidth int

	width  int
	height int
}

// runChatTUI starts the full-screen chat interface.
func runChatTUI(skipLanding bool) error {
	if err := requireTerminal(); err != nil {
		return err
	}

	sess := session.New()
	if skipLanding {
		sess.Start()
	}
	client := newBackendClient(sess.ID())
	ctrl := NewController(sess, client, settings.Timeout, sessionLogger(sess.ID()))

	p := tea.NewProgram(newChatModel(ctrl), tea.WithAltScreen(), tea.WithMouseCellMotion())
	utils.SetTUIMode(p)
	defer utils.ClearTUIMode()

	utils.LogDebug(fmt.Sprintf("chat session %s started against %s", sess.ID(), client.BaseURL()))
	_, err := p.Run()
	return err
}

func newChatModel(ctrl *Controller) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask me anything or upload a PDF..."
	ta.Prompt = userPrompt
	ta.SetWidth(30)
	ta.SetHeight(1)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(30, 5)
	// Arrow keys belong to the composer history.
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".PDF"}
	fp.CurrentDirectory = utils.GetEffectiveCWD()
	fp.ShowPermissions = false

	width, height, _ := term.GetSize(os.Stdout.Fd())

	m := chatModel{
		ctrl:     ctrl,
		keys:     defaultChatKeys(),
		landing:  uitk.NewLandingModel(),
		sidebar:  uitk.NewFileSidebar(),
		toast:    uitk.NewToastModel(),
		spin:     s,
		viewport: vp,
		textarea: ta,
		picker:   fp,
	}
	if ctrl.Session().View() == session.ViewChatting {
		m.textarea.Focus()
	}
	if width > 0 && height > 0 {
		m.resize(width, height)
	}
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.ctrl.RefreshFiles())
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	}

	m.toast, cmd = m.toast.Update(msg)
	cmds = append(cmds, cmd)

	// Results resolve on either screen; the startup file list usually lands
	// while the landing page is still showing.
	if handled, cmd := m.ctrl.Apply(msg); handled {
		if _, ok := msg.(filesLoadedMsg); ok {
			m.sidebar.SetFiles(m.ctrl.Session().Snapshot().UploadedFiles)
		}
		m.layout()
		m.refreshViewportBottom()
		return m, tea.Batch(append(cmds, cmd)...)
	}

	if m.ctrl.Session().View() == session.ViewLanding {
		if _, ok := msg.(uitk.StartChatMsg); ok {
			m.ctrl.Session().Start()
			m.textarea.Focus()
			m.layout()
			m.refreshViewportBottom()
			return m, tea.Batch(append(cmds, textarea.Blink)...)
		}
		m.landing, cmd = m.landing.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}

	switch msg := msg.(type) {
	case StateUpdateMsg:
		if msg.Notice != "" {
			cmds = append(cmds, uitk.ShowToast(msg.Notice))
		}
		m.refreshViewportBottom()

	case probeResultMsg:
		m.addNotice(formatProbeReport(msg.report, m.ctrl.ServerURL()), false)
		if msg.report.OK {
			cmds = append(cmds, uitk.ShowToast("✅ API connection successful!"))
		} else {
			cmds = append(cmds, uitk.ShowErrorToast("❌ API connection failed! See the probe details."))
		}
		m.refreshViewportBottom()

	case utils.TUIMessageMsg:
		// Debug lines go to the log file only.
		if msg.Message.Type != utils.DebugMessage {
			m.addNotice(utils.FormatMessage(msg.Message), msg.Message.Type == utils.ErrorMessage)
			m.refreshViewportBottom()
		}

	case spinner.TickMsg:
		if m.ctrl.Session().Awaiting() {
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
			m.setViewportContent()
		}

	case tea.KeyMsg:
		if m.pickerMode != pickerClosed {
			cmd = m.updatePicker(msg)
			return m, tea.Batch(append(cmds, cmd)...)
		}
		if handled, cmd := m.handleKey(msg); handled {
			return m, tea.Batch(append(cmds, cmd)...)
		}

	default:
		if m.pickerMode != pickerClosed {
			m.picker, cmd = m.picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.pickerMode == pickerClosed {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKey processes chat-screen keys. It reports whether the key was
// consumed; unconsumed keys go to the composer.
func (m *chatModel) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return true, m.ctrl.Cancel()

	case key.Matches(msg, m.keys.Attach):
		return true, m.openPicker(pickerAttach)

	case key.Matches(msg, m.keys.Upload):
		return true, m.openPicker(pickerUpload)

	case key.Matches(msg, m.keys.Detach):
		cmd := m.ctrl.Detach()
		m.layout()
		return true, cmd

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebar.Toggle()
		m.layout()
		m.refreshViewportBottom()
		return true, nil

	case key.Matches(msg, m.keys.FilesUp):
		m.sidebar.ScrollUp()
		return true, nil

	case key.Matches(msg, m.keys.FilesDown):
		m.sidebar.ScrollDown()
		return true, nil

	case key.Matches(msg, m.keys.HistoryPrev):
		if m.histIndex > 0 {
			m.histIndex--
			m.textarea.SetValue(m.history[m.histIndex])
			m.textarea.CursorEnd()
		}
		return true, nil

	case key.Matches(msg, m.keys.HistoryNext):
		if m.histIndex < len(m.history)-1 {
			m.histIndex++
			m.textarea.SetValue(m.history[m.histIndex])
			m.textarea.CursorEnd()
		} else {
			m.histIndex = len(m.history)
			m.textarea.SetValue("")
		}
		return true, nil

	case key.Matches(msg, m.keys.Send):
		return true, m.submit()
	}
	return false, nil
}

// submit handles Enter: slash commands run locally, anything else is sent.
func (m *chatModel) submit() tea.Cmd {
	text := m.textarea.Value()
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "/") {
		m.textarea.Reset()
		m.remember(trimmed)
		cmd := m.runCommand(trimmed)
		m.layout()
		m.refreshViewportBottom()
		return cmd
	}

	cmd := m.ctrl.Send(text)
	if cmd == nil {
		return nil
	}
	m.remember(trimmed)
	m.textarea.Reset()
	m.activity = "Thinking"
	m.layout()
	m.refreshViewportBottom()
	return tea.Batch(cmd, m.spin.Tick)
}

func (m *chatModel) remember(entry string) {
	if entry == "" {
		return
	}
	m.history = append(m.history, entry)
	m.histIndex = len(m.history)
}

func (m *chatModel) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/help":
		m.addNotice(chatHelpText, false)

	case "/attach":
		if len(args) == 0 {
			return m.openPicker(pickerAttach)
		}
		return m.ctrl.Attach(expandHome(strings.Join(args, " ")))

	case "/detach":
		return m.ctrl.Detach()

	case "/upload":
		if len(args) == 0 {
			return m.openPicker(pickerUpload)
		}
		paths := make([]string, len(args))
		for i, a := range args {
			paths[i] = expandHome(a)
		}
		return m.startUpload(paths)

	case "/files":
		files := m.ctrl.Session().Snapshot().UploadedFiles
		if len(files) == 0 {
			m.addNotice("No PDFs uploaded yet.", false)
		} else {
			m.addNotice(fmt.Sprintf("Uploaded PDFs (%d):\n  • %s", len(files), strings.Join(files, "\n  • ")), false)
		}
		return m.ctrl.RefreshFiles()

	case "/probe":
		m.addNotice("Probing "+m.ctrl.ServerURL()+"...", false)
		return m.ctrl.Probe()

	case "/copy":
		last, ok := m.ctrl.Session().LastAnswer()
		if !ok {
			return uitk.ShowToast("No answer to copy yet")
		}
		return copyToClipboard(last.Text)

	case "/clear":
		m.ctrl.Session().Clear()
		m.notices = nil

	case "/exit", "/quit":
		return tea.Quit

	default:
		m.addNotice(fmt.Sprintf("Unknown command '%s'. Type '/help' for available commands.", name), true)
	}
	return nil
}

func (m *chatModel) startUpload(paths []string) tea.Cmd {
	cmd := m.ctrl.UploadFiles(paths)
	if m.ctrl.Session().Awaiting() {
		m.activity = "Uploading"
		m.refreshViewportBottom()
		return tea.Batch(cmd, m.spin.Tick)
	}
	return cmd
}

func (m *chatModel) openPicker(mode pickerMode) tea.Cmd {
	m.pickerMode = mode
	m.selection = nil
	m.textarea.Blur()
	return m.picker.Init()
}

func (m *chatModel) closePicker() {
	m.pickerMode = pickerClosed
	m.selection = nil
	m.textarea.Focus()
}

func (m *chatModel) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "esc":
		m.closePicker()
		return nil
	case m.pickerMode == pickerUpload && key.Matches(msg, m.keys.Upload):
		paths := m.selection
		m.closePicker()
		if len(paths) == 0 {
			return uitk.ShowToast("No files selected")
		}
		return m.startUpload(paths)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		if m.pickerMode == pickerAttach {
			m.closePicker()
			attach := m.ctrl.Attach(path)
			m.layout()
			return tea.Batch(cmd, attach)
		}
		for _, p := range m.selection {
			if p == path {
				return cmd
			}
		}
		m.selection = append(m.selection, path)
		return tea.Batch(cmd, uitk.ShowToast(fmt.Sprintf("%d file(s) selected", len(m.selection))))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		return tea.Batch(cmd, uitk.ShowErrorToast(filepath.Base(path)+" is not a PDF"))
	}
	return cmd
}

func (m *chatModel) addNotice(text string, isError bool) {
	var after int64
	if t := m.ctrl.Session().Snapshot().Transcript; len(t) > 0 {
		after = t[len(t)-1].ID
	}
	m.notices = append(m.notices, notice{after: after, text: text, isError: isError})
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			utils.LogDebug(fmt.Sprintf("clipboard write failed: %v", err))
			return uitk.ShowToastMsg{Message: "Clipboard unavailable", Kind: uitk.ToastError}
		}
		return uitk.ShowToastMsg{Message: "Answer copied to clipboard"}
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height
	textWidth := width - 2
	if textWidth < 10 {
		textWidth = 10
	}
	m.textarea.SetWidth(textWidth)
	m.layout()
	m.refreshViewportBottom()
}

// layout sizes the viewport and sidebar to the space left by the footer.
func (m *chatModel) layout() {
	if m.width == 0 {
		return
	}
	footer := lipgloss.Height(renderChatInput(*m)) + lipgloss.Height(renderInfoBar(*m)) + 1
	h := m.height - footer
	if h < 1 {
		h = 1
	}
	w := m.width - m.sidebar.Width()
	if w < 10 {
		w = 10
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.sidebar.SetHeight(h)
}

// assistantRenderer returns a markdown renderer wrapped to width, or nil if
// glamour cannot build one.
func (m *chatModel) assistantRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	if m.renderer != nil && m.rendererWidth == width {
		return m.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		utils.LogDebug(fmt.Sprintf("markdown renderer unavailable: %v", err))
		return nil
	}
	m.renderer = r
	m.rendererWidth = width
	return r
}

func renderMarkdown(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func computeTranscript(m *chatModel) string {
	var b strings.Builder
	st := m.ctrl.Session().Snapshot()

	noticeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	noticeErrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	writeNotices := func(after int64) {
		for _, n := range m.notices {
			if n.after != after {
				continue
			}
			style := noticeStyle
			if n.isError {
				style = noticeErrStyle
			}
			b.WriteString(style.Render(n.text) + gap)
		}
	}

	if len(st.Transcript) == 0 && len(m.notices) == 0 {
		welcome := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Render("Welcome to Antom")
		hint := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("Ask me anything or upload a PDF to get started!")
		b.WriteString(welcome + "\n" + hint + gap)
	}

	writeNotices(0)
	faint := lipgloss.NewStyle().Faint(true)
	for _, message := range st.Transcript {
		stamp := faint.Render(message.CreatedAt.Format("15:04"))
		var line string
		switch message.Role {
		case session.RoleAssistant:
			label := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(assistantPrompt)
			width := m.viewport.Width - 4
			line = label + " " + stamp + "\n" + renderMarkdown(m.assistantRenderer(width), message.Text)
		case session.RoleUser:
			style := lipgloss.NewStyle().Foreground(lipgloss.Color("#cccccc"))
			line = style.Bold(true).Render(userPrompt) + style.Render(message.Text)
			if message.AttachedFileName != "" {
				line += "  " + faint.Render("📎 "+message.AttachedFileName)
			}
			line += "  " + stamp
		case session.RoleError:
			line = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(message.Text) + "  " + stamp
		}
		b.WriteString(line + gap)
		writeNotices(message.ID)
	}
	return b.String()
}

func renderChatContent(m *chatModel) string {
	var b strings.Builder
	b.WriteString(computeTranscript(m))

	if m.ctrl.Session().Awaiting() {
		activity := m.activity
		if activity == "" {
			activity = "Thinking"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(m.spin.View()+activity+"...") + gap)
	}
	return b.String()
}

// setViewportContent updates the viewport with the current chat rendering.
func (m *chatModel) setViewportContent() {
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(renderChatContent(m)))
}

// refreshViewportBottom updates the viewport and scrolls to the bottom.
func (m *chatModel) refreshViewportBottom() {
	m.setViewportContent()
	m.viewport.GotoBottom()
}

func renderAttachmentChip(m chatModel) string {
	pending := m.ctrl.Session().Pending()
	if pending == nil {
		return ""
	}
	chip := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color("63")).
		Padding(0, 1).
		Render("📎 " + pending.Name)
	return chip + " " + lipgloss.NewStyle().Faint(true).Render("ctrl+x to remove")
}

func renderChatInput(m chatModel) string {
	var b strings.Builder

	if chip := renderAttachmentChip(m); chip != "" {
		b.WriteString(chip + "\n")
	}

	cbStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63"))
	b.WriteString(cbStyle.Render(m.textarea.View()))

	helpText := "/help for commands | Ctrl+O: attach | Ctrl+U: upload | Tab: files | Up/Down: history"
	if m.ctrl.Session().Awaiting() {
		helpText = "Waiting for the server | Esc: cancel"
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Width(max(m.width-2, 10)).Render(helpText))
	return b.String()
}

func renderInfoBar(m chatModel) string {
	st := m.ctrl.Session().Snapshot()
	status := "ready"
	if st.AwaitingResponse {
		status = "busy"
	}
	sessionID := m.ctrl.Session().ID()
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	statusLine := fmt.Sprintf("📄 Antom | Server: %s | PDFs: %d | Session: %s | %s",
		utils.DisplayHost(m.ctrl.ServerURL()), len(st.UploadedFiles), sessionID, status)

	if m.width > 5 && lipgloss.Width(statusLine) > m.width-2 {
		statusLine = truncateRunes(statusLine, m.width-5) + "..."
	}

	return lipgloss.NewStyle().
		Width(max(m.width, 1)).
		Background(lipgloss.Color("#027ffd")).
		Foreground(lipgloss.Color("#ffffff")).
		PaddingLeft(1).
		PaddingRight(1).
		Render(statusLine)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func renderPicker(m chatModel) string {
	title := "Select a PDF to attach (enter: choose, esc: close)"
	if m.pickerMode == pickerUpload {
		title = fmt.Sprintf("Select PDFs to upload (enter: add, ctrl+u: upload %d selected, esc: cancel)", len(m.selection))
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Render(title)
	dir := lipgloss.NewStyle().Faint(true).Render(m.picker.CurrentDirectory)
	return header + "\n" + dir + "\n\n" + m.picker.View()
}

func (m chatModel) View() string {
	if m.ctrl.Session().View() == session.ViewLanding {
		return m.landing.View()
	}

	var body string
	if m.pickerMode != pickerClosed {
		body = lipgloss.NewStyle().Width(m.viewport.Width).Height(m.viewport.Height).Render(renderPicker(m))
	} else {
		body = m.viewport.View()
	}
	if m.sidebar.IsOpen() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), body)
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(renderChatInput(m))
	b.WriteString("\n")
	b.WriteString(renderInfoBar(m))

	if v := m.toast.View(); v != "" {
		b.WriteString("\n")
		b.WriteString(v)
	}
	return b.String()
}
