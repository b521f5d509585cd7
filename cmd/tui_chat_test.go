package cmd

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"antom-cli/cmd/utils"
	"antom-cli/internal/backend"
	"antom-cli/internal/session"
	uitk "antom-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m chatModel, msg tea.Msg) (chatModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(chatModel)
	require.True(t, ok)
	return cm, cmd
}

func newTestChatModel(t *testing.T, started bool) chatModel {
	t.Helper()
	ctrl := newTestController(t, http.NotFoundHandler())
	if !started {
		// newTestController starts the session; rebuild one on the landing view.
		ctrl.session = session.New(session.WithID("landing-session"))
	}
	m := newChatModel(ctrl)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func typeAndSubmit(t *testing.T, m chatModel, text string) (chatModel, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(text)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func noticeTexts(m chatModel) string {
	var b strings.Builder
	for _, n := range m.notices {
		b.WriteString(n.text + "\n")
	}
	return b.String()
}

func TestChatModelLandingToChat(t *testing.T) {
	m := newTestChatModel(t, false)
	view := m.View()
	assert.Contains(t, view, "Antom")
	assert.Contains(t, view, "Start Chatting")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, session.ViewLanding, m.ctrl.Session().View(), "enter only requests the switch")

	m, _ = update(t, m, uitk.StartChatMsg{})
	assert.Equal(t, session.ViewChatting, m.ctrl.Session().View())
	assert.True(t, m.textarea.Focused())
	assert.Contains(t, m.View(), "Welcome to Antom")
}

func TestChatModelStartupFilesSurviveLanding(t *testing.T) {
	ctrl := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"uploaded_files":["a.pdf","b.pdf"]}`)
	}))
	ctrl.session = session.New(session.WithID("landing-session"))
	m := newChatModel(ctrl)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	require.Equal(t, session.ViewLanding, ctrl.Session().View())

	m, _ = update(t, m, m.ctrl.RefreshFiles()())
	assert.Equal(t, session.ViewLanding, ctrl.Session().View())

	m, _ = update(t, m, uitk.StartChatMsg{})
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ctrl.Session().Snapshot().UploadedFiles)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, m.sidebar.Files())
	assert.Contains(t, m.View(), "PDFs: 2")
}

func TestChatModelSendAndResolve(t *testing.T) {
	m := newTestChatModel(t, true)

	m, cmd := typeAndSubmit(t, m, "What is on page 2?")
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.Session().Awaiting())
	assert.Empty(t, m.textarea.Value())
	assert.Contains(t, m.View(), "Thinking...")

	m, _ = update(t, m, sendResultMsg{answer: &backend.Answer{Text: "A table of results.", Timestamp: time.Now()}})
	assert.False(t, m.ctrl.Session().Awaiting())

	view := m.View()
	assert.Contains(t, view, "What is on page 2?")
	assert.Contains(t, view, "results")
	assert.NotContains(t, view, "Thinking...")
}

func TestChatModelEnterWhileAwaitingKeepsInput(t *testing.T) {
	m := newTestChatModel(t, true)
	m, _ = typeAndSubmit(t, m, "first")

	m, cmd := typeAndSubmit(t, m, "second")
	assert.Nil(t, cmd)
	assert.Equal(t, "second", m.textarea.Value())
	assert.Len(t, m.ctrl.Session().Snapshot().Transcript, 1)
}

func TestChatModelHistory(t *testing.T) {
	m := newTestChatModel(t, true)
	m, _ = typeAndSubmit(t, m, "/help")
	m, _ = typeAndSubmit(t, m, "/files")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "/files", m.textarea.Value())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "/help", m.textarea.Value())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "/files", m.textarea.Value())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.textarea.Value())
}

func TestChatModelSlashCommands(t *testing.T) {
	m := newTestChatModel(t, true)

	m, _ = typeAndSubmit(t, m, "/help")
	assert.Contains(t, noticeTexts(m), "/upload [path...]")

	m, _ = typeAndSubmit(t, m, "/files")
	assert.Contains(t, noticeTexts(m), "No PDFs uploaded yet.")

	m, _ = typeAndSubmit(t, m, "/bogus")
	require.NotEmpty(t, m.notices)
	last := m.notices[len(m.notices)-1]
	assert.True(t, last.isError)
	assert.Contains(t, last.text, "Unknown command '/bogus'")

	m, _ = typeAndSubmit(t, m, "/clear")
	assert.Empty(t, m.notices)
	assert.Empty(t, m.ctrl.Session().Snapshot().Transcript)

	_, cmd := typeAndSubmit(t, m, "/copy")
	msgs := collectMsgs(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, "No answer to copy yet", msgs[0].(uitk.ShowToastMsg).Message)
}

func TestChatModelSlashNotSentToServer(t *testing.T) {
	m := newTestChatModel(t, true)
	m, _ = typeAndSubmit(t, m, "/help")
	assert.Empty(t, m.ctrl.Session().Snapshot().Transcript)
	assert.False(t, m.ctrl.Session().Awaiting())
}

func TestChatModelFilesLoadedUpdatesSidebar(t *testing.T) {
	m := newTestChatModel(t, true)
	m, _ = update(t, m, filesLoadedMsg{files: []string{"alpha.pdf", "beta.pdf"}})

	assert.Equal(t, []string{"alpha.pdf", "beta.pdf"}, m.sidebar.Files())
	view := m.View()
	assert.Contains(t, view, "alpha.pdf")
	assert.Contains(t, view, "PDFs: 2")
}

func TestChatModelToggleSidebar(t *testing.T) {
	m := newTestChatModel(t, true)
	require.True(t, m.sidebar.IsOpen())
	assert.Contains(t, m.View(), "Uploaded PDFs")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.sidebar.IsOpen())
	assert.NotContains(t, m.View(), "Uploaded PDFs")
	assert.Equal(t, 100, m.viewport.Width)
}

func TestChatModelEscCancels(t *testing.T) {
	m := newTestChatModel(t, true)
	m, _ = typeAndSubmit(t, m, "slow")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []tea.Msg{StateUpdateMsg{Notice: "Request cancelled"}}, collectMsgs(cmd))
}

func TestChatModelAttachmentChip(t *testing.T) {
	m := newTestChatModel(t, true)
	m.ctrl.Session().Stage(backend.File{Name: "contract.pdf", MediaType: backend.PDFMediaType})
	assert.Contains(t, m.View(), "📎 contract.pdf")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Nil(t, m.ctrl.Session().Pending())
	assert.NotContains(t, m.View(), "📎 contract.pdf")
}

func TestChatModelPicker(t *testing.T) {
	m := newTestChatModel(t, true)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	assert.Equal(t, pickerAttach, m.pickerMode)
	assert.False(t, m.textarea.Focused())
	assert.Contains(t, m.View(), "Select a PDF to attach")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, pickerClosed, m.pickerMode)
	assert.True(t, m.textarea.Focused())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.Equal(t, pickerUpload, m.pickerMode)
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.Equal(t, pickerClosed, m.pickerMode)
	msgs := collectMsgs(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, "No files selected", msgs[0].(uitk.ShowToastMsg).Message)
}

func TestChatModelRoutedOutput(t *testing.T) {
	m := newTestChatModel(t, true)

	m, _ = update(t, m, utils.TUIMessageMsg{Message: utils.OutputMessage{Type: utils.DebugMessage, Content: "HTTP GET /files"}})
	assert.Empty(t, m.notices)

	m, _ = update(t, m, utils.TUIMessageMsg{Message: utils.OutputMessage{Type: utils.WarningMessage, Content: "server slow"}})
	require.Len(t, m.notices, 1)
	assert.Contains(t, m.notices[0].text, "server slow")
}

func TestChatModelProbeResult(t *testing.T) {
	m := newTestChatModel(t, true)
	report := backend.ProbeReport{
		OK: true,
		Checks: []backend.ProbeCheck{
			{Name: "root", Method: http.MethodGet, Path: "/", StatusCode: 200},
		},
	}
	m, cmd := update(t, m, probeResultMsg{report: report})
	assert.Contains(t, noticeTexts(m), "root")

	msgs := collectMsgs(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, "✅ API connection successful!", msgs[0].(uitk.ShowToastMsg).Message)
}

func TestNoticesFollowTheirMessage(t *testing.T) {
	m := newTestChatModel(t, true)
	m.addNotice("before anything", false)
	m, _ = typeAndSubmit(t, m, "question")
	m, _ = update(t, m, sendResultMsg{answer: &backend.Answer{Text: "answer", Timestamp: time.Now()}})
	m.addNotice("after the answer", false)

	out := computeTranscript(&m)
	assert.Less(t, strings.Index(out, "before anything"), strings.Index(out, "question"))
	assert.Less(t, strings.Index(out, "answer"), strings.Index(out, "after the answer"))
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "**raw**", renderMarkdown(nil, "**raw**"))

	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(60))
	require.NoError(t, err)
	out := renderMarkdown(r, "# Title\n\nSome **bold** text.")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/docs/a.pdf", expandHome("~/docs/a.pdf"))
	assert.Equal(t, "relative/a.pdf", expandHome("relative/a.pdf"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
	assert.Equal(t, "short", truncateRunes("short", 10))
}
