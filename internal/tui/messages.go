package tui

import (
	"github.com/Veraticus/thrift/internal/chat"
)

// replyMsg carries the answer to the last user turn.
type replyMsg struct {
	err   error
	reply chat.Reply
}

// entry is one rendered line of the transcript.
type entry struct {
	text  string
	goals []string
	role  speaker
}

type speaker int

const (
	speakerUser speaker = iota
	speakerAssistant
	speakerError
)
