package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antom-cli/internal/backend"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newChatting(t *testing.T) *Session {
	t.Helper()
	s := New(WithClock(func() time.Time { return fixedNow }), WithID("test-session"))
	require.True(t, s.Start())
	return s
}

func pdf(name string) backend.File {
	return backend.File{Name: name, Path: "/tmp/" + name, MediaType: backend.PDFMediaType}
}

func TestNewSession(t *testing.T) {
	s := New()
	assert.NotEmpty(t, s.ID())
	st := s.Snapshot()
	assert.Equal(t, ViewLanding, st.View)
	assert.Empty(t, st.Transcript)
	assert.Empty(t, st.UploadedFiles)
	assert.Nil(t, st.Pending)
	assert.False(t, st.AwaitingResponse)
}

func TestStartIsOneWay(t *testing.T) {
	s := New()
	assert.True(t, s.Start())
	assert.Equal(t, ViewChatting, s.View())
	assert.False(t, s.Start())
	assert.Equal(t, ViewChatting, s.View())
}

func TestBeginSendGuards(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Session)
		text  string
	}{
		{name: "landing view", setup: func(s *Session) {}, text: "hi"},
		{name: "blank text without file", setup: func(s *Session) { s.Start() }, text: "   \n\t"},
		{name: "awaiting", setup: func(s *Session) {
			s.Start()
			_, ok := s.BeginSend("first")
			require.True(t, ok)
		}, text: "second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.setup(s)
			before := s.Snapshot()

			_, ok := s.BeginSend(tt.text)
			assert.False(t, ok)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestSendSuccess(t *testing.T) {
	s := newChatting(t)

	req, ok := s.BeginSend("What is 6*7?")
	require.True(t, ok)
	assert.Equal(t, "What is 6*7?", req.Question)
	assert.Nil(t, req.File)
	assert.True(t, s.Awaiting())

	answeredAt := fixedNow.Add(time.Second)
	msg := s.ResolveSend(&backend.Answer{Text: "42", Timestamp: answeredAt}, nil)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "42", msg.Text)
	assert.Equal(t, answeredAt, msg.CreatedAt)

	st := s.Snapshot()
	assert.False(t, st.AwaitingResponse)
	require.Len(t, st.Transcript, 2)
	assert.Equal(t, RoleUser, st.Transcript[0].Role)
	assert.Equal(t, fixedNow, st.Transcript[0].CreatedAt)
	assert.Less(t, st.Transcript[0].ID, st.Transcript[1].ID)
}

func TestSendWithAttachmentOnly(t *testing.T) {
	s := newChatting(t)
	s.Stage(pdf("paper.pdf"))

	req, ok := s.BeginSend("")
	require.True(t, ok)
	require.NotNil(t, req.File)
	assert.Equal(t, "paper.pdf", req.File.Name)

	st := s.Snapshot()
	assert.Nil(t, st.Pending, "attachment is consumed by the send")
	assert.Equal(t, "paper.pdf", st.Transcript[0].AttachedFileName)
}

func TestSendFailureAppendsGenericError(t *testing.T) {
	s := newChatting(t)
	_, ok := s.BeginSend("hello")
	require.True(t, ok)

	msg := s.ResolveSend(nil, &backend.AskError{StatusCode: 500, Body: "boom"})
	assert.Equal(t, RoleError, msg.Role)
	assert.Equal(t, SendFailedText, msg.Text)
	assert.False(t, s.Awaiting())
	assert.NotContains(t, msg.Text, "boom")
}

func TestStageReplacesAndUnstage(t *testing.T) {
	s := newChatting(t)
	s.Stage(pdf("a.pdf"))
	s.Stage(pdf("b.pdf"))
	require.NotNil(t, s.Pending())
	assert.Equal(t, "b.pdf", s.Pending().Name)

	s.Unstage()
	assert.Nil(t, s.Pending())
	_, ok := s.BeginSend("")
	assert.False(t, ok)
}

func TestBulkUploadLifecycle(t *testing.T) {
	s := newChatting(t)

	require.NoError(t, s.BeginBulkUpload([]backend.File{pdf("a.pdf"), pdf("b.pdf")}))
	assert.True(t, s.Awaiting())
	assert.ErrorIs(t, s.BeginBulkUpload([]backend.File{pdf("c.pdf")}), ErrBusy)

	msg := s.ResolveBulkUpload("2 files processed", nil)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "2 files processed", msg.Text)
	assert.False(t, s.Awaiting())

	s.ReplaceFiles([]string{"a.pdf", "b.pdf"})
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, s.Snapshot().UploadedFiles)
}

func TestBulkUploadRejectsNonPDF(t *testing.T) {
	s := newChatting(t)
	before := s.Snapshot()

	err := s.BeginBulkUpload([]backend.File{pdf("a.pdf"), {Name: "notes.txt", MediaType: "text/plain"}})
	var vErr *backend.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, before, s.Snapshot())
}

func TestBulkUploadEmptySelection(t *testing.T) {
	s := newChatting(t)
	assert.ErrorIs(t, s.BeginBulkUpload(nil), backend.ErrNoFiles)
	assert.False(t, s.Awaiting())
}

func TestBulkUploadFailure(t *testing.T) {
	s := newChatting(t)
	require.NoError(t, s.BeginBulkUpload([]backend.File{pdf("a.pdf")}))

	msg := s.ResolveBulkUpload("", errors.New("connection refused"))
	assert.Equal(t, RoleError, msg.Role)
	assert.Equal(t, UploadFailedText, msg.Text)
	assert.False(t, s.Awaiting())
}

func TestBulkUploadEmptyMessageFallback(t *testing.T) {
	s := newChatting(t)
	require.NoError(t, s.BeginBulkUpload([]backend.File{pdf("a.pdf")}))
	assert.Equal(t, "Files uploaded successfully.", s.ResolveBulkUpload("", nil).Text)
}

func TestReplaceFiles(t *testing.T) {
	s := New()
	s.ReplaceFiles([]string{"b.pdf", "a.pdf", "b.pdf"})
	assert.Equal(t, []string{"b.pdf", "a.pdf"}, s.Snapshot().UploadedFiles)

	s.ReplaceFiles(nil)
	assert.Equal(t, []string{}, s.Snapshot().UploadedFiles)
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := newChatting(t)
	s.Stage(pdf("a.pdf"))
	s.ReplaceFiles([]string{"x.pdf"})
	snap := s.Snapshot()

	snap.Pending.Name = "changed"
	snap.UploadedFiles[0] = "changed"
	_, _ = s.BeginSend("q")

	assert.Empty(t, snap.Transcript)
	assert.Equal(t, "x.pdf", s.Snapshot().UploadedFiles[0])
	assert.Equal(t, "a.pdf", s.Snapshot().Transcript[0].AttachedFileName)
}

func TestLastAnswerAndClear(t *testing.T) {
	s := newChatting(t)
	_, ok := s.LastAnswer()
	assert.False(t, ok)

	s.BeginSend("q1")
	s.ResolveSend(&backend.Answer{Text: "a1"}, nil)
	s.BeginSend("q2")
	s.ResolveSend(nil, errors.New("down"))

	last, ok := s.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "a1", last.Text)

	s.Clear()
	assert.Empty(t, s.Snapshot().Transcript)
	_, ok = s.LastAnswer()
	assert.False(t, ok)
}

func TestTranscriptIDsAreMonotonic(t *testing.T) {
	s := newChatting(t)
	for i := 0; i < 3; i++ {
		s.BeginSend("q")
		s.ResolveSend(&backend.Answer{Text: "a"}, nil)
	}
	st := s.Snapshot()
	for i := 1; i < len(st.Transcript); i++ {
		assert.Greater(t, st.Transcript[i].ID, st.Transcript[i-1].ID)
	}
}
