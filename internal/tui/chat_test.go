package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/eren-998/Email-assistant/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampCommand(t *testing.T) {
	short := "check my inbox"
	assert.Equal(t, short, clampCommand(short))

	long := strings.Repeat("é", services.MaxCommandLength+100)
	assert.Equal(t, strings.Repeat("é", services.MaxCommandLength), clampCommand(long))
}

func TestApp_InputTruncatesLongText(t *testing.T) {
	a := newTestApp(t)

	a.input.SetText(strings.Repeat("x", services.MaxCommandLength+100))
	assert.Equal(t, strings.Repeat("x", services.MaxCommandLength), a.input.GetText())

	a.input.SetText("short")
	assert.Equal(t, "short", a.input.GetText())
}

func TestApp_BusySubmitKeepsTypedText(t *testing.T) {
	backend := &stubBackend{replies: make(chan string)}
	a := newBackedApp(t, backend, nil)
	startLoop(t, a)

	first := make(chan error, 1)
	go func() { first <- a.panel.Conversation.Submit(a.ctx, "check my inbox") }()
	require.Eventually(t, a.panel.Conversation.Sending, time.Second, 5*time.Millisecond)

	// A second submit that lost the race to the first one
	a.runCommand("what is new?")
	require.Eventually(t, func() bool {
		text := make(chan string, 1)
		go a.QueueUpdate(func() { text <- a.input.GetText() })
		select {
		case got := <-text:
			return got == "what is new?"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	backend.replies <- "done"
	require.NoError(t, <-first)
	msgs := a.panel.Conversation.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "check my inbox", msgs[0].Content)
	assert.Equal(t, "done", msgs[1].Content)
}
