package session

import "sync"

// Store holds the mutable state of one analysis session.
//
// Every submission obtains a new request token from Begin. Completions and
// failures must present that token back; a completion carrying a superseded
// token is discarded silently, so a late response from request N can never
// overwrite the result of request N+1. Tokens increase monotonically and are
// never reused within a session.
type Store struct {
	mu sync.Mutex

	token      uint64
	status     Status
	failReason string
	softError  string
	result     *AnalysisResult

	turns   []ChatTurn
	botBusy bool
}

// NewStore creates an empty session store in the Idle state.
func NewStore() *Store {
	return &Store{}
}

// Begin starts a new submission: the previous result and soft error are
// cleared atomically, status moves to InFlight, and a fresh request token is
// returned. Any outstanding submission is superseded from this point on.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.status = StatusInFlight
	s.failReason = ""
	s.softError = ""
	s.result = nil
	return s.token
}

// Complete installs the result for the submission identified by token.
// softError carries the service's soft failure message, which coexists with
// partial results. Returns false (and mutates nothing) when the token has
// been superseded.
func (s *Store) Complete(token uint64, result *AnalysisResult, softError string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return false
	}
	s.status = StatusReady
	s.result = result
	s.softError = softError
	return true
}

// Fail marks the submission identified by token as failed with a
// user-facing reason. Returns false when the token has been superseded.
func (s *Store) Fail(token uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return false
	}
	s.status = StatusFailed
	s.failReason = reason
	s.result = nil
	return true
}

// CurrentToken returns the token of the most recent submission.
func (s *Store) CurrentToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Status returns the request status and, when failed, the failure reason.
func (s *Store) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.failReason
}

// Result returns the current analysis result, or nil when none is ready.
func (s *Store) Result() *AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SoftError returns the soft failure message from the current result, if any.
func (s *Store) SoftError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.softError
}

// AppendTurn appends a turn to the chat transcript.
func (s *Store) AppendTurn(turn ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// AppendUserTurn appends a user turn with the given text.
func (s *Store) AppendUserTurn(text string) {
	s.AppendTurn(ChatTurn{Sender: SenderUser, Text: text})
}

// AppendBotTurn appends a bot turn with the given text.
func (s *Store) AppendBotTurn(text string) {
	s.AppendTurn(ChatTurn{Sender: SenderBot, Text: text})
}

// Turns returns a copy of the chat transcript in append order.
func (s *Store) Turns() []ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// TurnCount returns the number of chat turns recorded so far.
func (s *Store) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// SetBotBusy flags whether the bot is working on an utterance.
func (s *Store) SetBotBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.botBusy = busy
}

// BotBusy reports whether the bot is working on an utterance.
func (s *Store) BotBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.botBusy
}
