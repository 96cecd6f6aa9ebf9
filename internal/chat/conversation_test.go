// AngelaMos | 2026
// conversation_test.go

package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowTrimKeepsSystemPrompt(t *testing.T) {
	w := NewWindow("be helpful", 20)

	for i := range 30 {
		w.Append(Message{Role: RoleUser, Content: fmt.Sprintf("msg %d", i)})
		assert.LessOrEqual(t, w.Len(), 21)
	}

	msgs := w.Messages()
	require.Len(t, msgs, 21)
	assert.Equal(t, Message{Role: RoleSystem, Content: "be helpful"}, msgs[0])
	assert.Equal(t, "msg 10", msgs[1].Content)
	assert.Equal(t, "msg 29", msgs[20].Content)
}

func TestWindowUnderLimitUntouched(t *testing.T) {
	w := NewWindow("sys", 20)
	w.Append(Message{Role: RoleUser, Content: "hi"})
	w.Append(Message{Role: RoleAssistant, Content: "hello"})

	msgs := w.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
}

func TestWindowMessagesIsCopy(t *testing.T) {
	w := NewWindow("sys", 20)
	w.Append(Message{Role: RoleUser, Content: "hi"})

	msgs := w.Messages()
	msgs[1].Content = "changed"

	assert.Equal(t, "hi", w.Messages()[1].Content)
}

func TestWindowReset(t *testing.T) {
	w := NewWindow("sys", 20)
	w.Append(Message{Role: RoleUser, Content: "hi"})
	snapshot := w.Messages()

	w.Reset()
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, RoleSystem, w.Messages()[0].Role)
	assert.Len(t, snapshot, 2)

	w.Append(Message{Role: RoleUser, Content: "again"})
	assert.Equal(t, "again", w.Messages()[1].Content)
	assert.Equal(t, "hi", snapshot[1].Content)
}
