package conversation

// Role attributes a turn to one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the transcript. Immutable once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Store holds the ordered transcript for a single widget instance. The
// store is the sole writer of turns; the only mutations are appending at
// the tail and removing the tail. It keeps no persistent state — a fresh
// store is created whenever the widget is (re)initialized.
//
// Not safe for concurrent use; the widget serializes access behind its busy
// gate.
type Store struct {
	turns []Turn
}

func NewStore() *Store {
	return &Store{}
}

// AppendUser appends a user turn. Empty content is allowed here; callers
// decide whether blank input is worth sending at all.
func (s *Store) AppendUser(content string) {
	s.turns = append(s.turns, Turn{Role: RoleUser, Content: content})
}

// AppendAssistant appends an assistant turn.
func (s *Store) AppendAssistant(content string) {
	s.turns = append(s.turns, Turn{Role: RoleAssistant, Content: content})
}

// RemoveLast pops the most recently appended turn. No-op on an empty
// transcript. Used to roll back optimistic turns after a failed request.
func (s *Store) RemoveLast() {
	if len(s.turns) == 0 {
		return
	}
	s.turns = s.turns[:len(s.turns)-1]
}

// History returns the ordered transcript as a copy, so callers cannot
// observe or cause later mutations through the returned slice.
func (s *Store) History() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of stored turns.
func (s *Store) Len() int {
	return len(s.turns)
}
