// AngelaMos | 2026
// conversation.go

package chat

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Window is the history sent to the model: the system prompt at index 0
// followed by at most maxHistory recent turns. It is owned by the UI loop
// and is not safe for concurrent use.
type Window struct {
	messages   []Message
	maxHistory int
}

func NewWindow(systemPrompt string, maxHistory int) *Window {
	if maxHistory < 1 {
		maxHistory = 1
	}
	return &Window{
		messages:   []Message{{Role: RoleSystem, Content: systemPrompt}},
		maxHistory: maxHistory,
	}
}

// Append adds m and trims the window.
func (w *Window) Append(m Message) {
	w.messages = append(w.messages, m)
	w.Trim()
}

// Trim drops the oldest turns once the window holds more than the system
// prompt plus maxHistory entries.
func (w *Window) Trim() {
	limit := w.maxHistory + 1
	if len(w.messages) <= limit {
		return
	}

	trimmed := make([]Message, 0, limit)
	trimmed = append(trimmed, w.messages[0])
	trimmed = append(trimmed, w.messages[len(w.messages)-w.maxHistory:]...)
	w.messages = trimmed
}

// Messages returns a copy safe to hand to a background request.
func (w *Window) Messages() []Message {
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// Reset keeps only the system prompt.
func (w *Window) Reset() {
	w.messages = w.messages[:1:1]
}

func (w *Window) Len() int {
	return len(w.messages)
}
