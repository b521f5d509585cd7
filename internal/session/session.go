// Package session holds the chat client's state and the transitions that
// mutate it. A Session is not safe for concurrent use; the TUI owns it from
// its single update loop and HTTP work reports back through Resolve calls.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"antom-cli/internal/backend"
)

// Role identifies who produced a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// View is the screen the session is showing.
type View int

const (
	ViewLanding View = iota
	ViewChatting
)

func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewChatting:
		return "chatting"
	default:
		return "unknown"
	}
}

// Transcript messages for failed operations. Failure details go to the log.
const (
	SendFailedText   = "Sorry, there was an error processing your request."
	UploadFailedText = "Sorry, there was an error uploading your file(s)."
)

// ErrBusy is returned when a request is already outstanding.
var ErrBusy = errors.New("a request is already in progress")

// Message is one transcript entry. Messages are never edited after append.
type Message struct {
	ID               int64
	Role             Role
	Text             string
	AttachedFileName string
	CreatedAt        time.Time
}

// State is a copy of the session's observable state.
type State struct {
	Transcript       []Message
	Pending          *backend.File
	AwaitingResponse bool
	UploadedFiles    []string
	View             View
}

// Request is what BeginSend hands to the transport.
type Request struct {
	Question string
	File     *backend.File
}

// Session is the chat client's state machine.
type Session struct {
	id     string
	now    func() time.Time
	nextID int64

	view          View
	transcript    []Message
	pending       *backend.File
	awaiting      bool
	uploadedFiles []string
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session identifier instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New returns a session on the landing view with an empty transcript.
func New(opts ...Option) *Session {
	s := &Session{
		now:           time.Now,
		view:          ViewLanding,
		transcript:    []Message{},
		uploadedFiles: []string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s
}

// ID identifies this session in logs.
func (s *Session) ID() string { return s.id }

// View returns the current screen.
func (s *Session) View() View { return s.view }

// Awaiting reports whether a request is outstanding.
func (s *Session) Awaiting() bool { return s.awaiting }

// Pending returns the staged attachment, or nil.
func (s *Session) Pending() *backend.File { return s.pending }

// Start moves from the landing view to the chat view. There is no way back.
func (s *Session) Start() bool {
	if s.view != ViewLanding {
		return false
	}
	s.view = ViewChatting
	return true
}

// Stage sets the attachment for the next send, replacing any previous one.
func (s *Session) Stage(f backend.File) {
	s.pending = &f
}

// Unstage drops the staged attachment.
func (s *Session) Unstage() {
	s.pending = nil
}

// CanSend reports whether BeginSend(text) would dispatch a request.
func (s *Session) CanSend(text string) bool {
	if s.view != ViewChatting || s.awaiting {
		return false
	}
	return strings.TrimSpace(text) != "" || s.pending != nil
}

// BeginSend appends the user's message, consumes the staged attachment and
// marks the session as awaiting. It returns false and changes nothing when
// the send is not allowed.
func (s *Session) BeginSend(text string) (Request, bool) {
	if !s.CanSend(text) {
		return Request{}, false
	}

	req := Request{Question: text, File: s.pending}
	msg := Message{Role: RoleUser, Text: text}
	if s.pending != nil {
		msg.AttachedFileName = s.pending.Name
	}
	s.append(msg)
	s.pending = nil
	s.awaiting = true
	return req, true
}

// ResolveSend records the outcome of the request dispatched by BeginSend and
// clears the awaiting flag whatever the outcome.
func (s *Session) ResolveSend(ans *backend.Answer, err error) Message {
	defer func() { s.awaiting = false }()

	if err != nil || ans == nil {
		return s.append(Message{Role: RoleError, Text: SendFailedText})
	}
	return s.append(Message{Role: RoleAssistant, Text: ans.Text, CreatedAt: ans.Timestamp})
}

// BeginBulkUpload validates files and marks the session as awaiting. A
// *backend.ValidationError leaves the session untouched, as do an empty
// selection (backend.ErrNoFiles) and an outstanding request (ErrBusy).
func (s *Session) BeginBulkUpload(files []backend.File) error {
	if len(files) == 0 {
		return backend.ErrNoFiles
	}
	if s.awaiting {
		return ErrBusy
	}
	if err := backend.ValidateBatch(files); err != nil {
		return err
	}
	s.awaiting = true
	return nil
}

// ResolveBulkUpload appends the backend's status message, or the generic
// upload failure, and clears the awaiting flag.
func (s *Session) ResolveBulkUpload(message string, err error) Message {
	defer func() { s.awaiting = false }()

	if err != nil {
		return s.append(Message{Role: RoleError, Text: UploadFailedText})
	}
	if message == "" {
		message = "Files uploaded successfully."
	}
	return s.append(Message{Role: RoleAssistant, Text: message})
}

// ReplaceFiles replaces the uploaded-file registry with names, keeping the
// first occurrence of each.
func (s *Session) ReplaceFiles(names []string) {
	seen := make(map[string]struct{}, len(names))
	files := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		files = append(files, n)
	}
	s.uploadedFiles = files
}

// Clear empties the local transcript. The backend is not affected.
func (s *Session) Clear() {
	s.transcript = []Message{}
}

// LastAnswer returns the most recent assistant message.
func (s *Session) LastAnswer() (Message, bool) {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Role == RoleAssistant {
			return s.transcript[i], true
		}
	}
	return Message{}, false
}

// Snapshot returns a copy of the state that later transitions will not change.
func (s *Session) Snapshot() State {
	st := State{
		Transcript:       append([]Message(nil), s.transcript...),
		AwaitingResponse: s.awaiting,
		UploadedFiles:    append([]string(nil), s.uploadedFiles...),
		View:             s.view,
	}
	if st.Transcript == nil {
		st.Transcript = []Message{}
	}
	if st.UploadedFiles == nil {
		st.UploadedFiles = []string{}
	}
	if s.pending != nil {
		p := *s.pending
		st.Pending = &p
	}
	return st
}

func (s *Session) append(m Message) Message {
	s.nextID++
	m.ID = s.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.transcript = append(s.transcript, m)
	return m
}
