package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calumba-holding/spacebot/opencode"
)

func TestInSession(t *testing.T) {
	tests := []struct {
		name string
		ev   opencode.Event
		want bool
	}{
		{
			"message in session",
			opencode.MessageUpdatedEvent{Info: &opencode.MessageInfo{ID: "msg_1", SessionID: "ses_1"}},
			true,
		},
		{
			"message in other session",
			opencode.MessageUpdatedEvent{Info: &opencode.MessageInfo{ID: "msg_2", SessionID: "ses_2"}},
			false,
		},
		{
			"message without info",
			opencode.MessageUpdatedEvent{},
			true,
		},
		{
			"text part in session",
			opencode.MessagePartUpdatedEvent{Part: opencode.TextPart{ID: "prt_1", SessionID: "ses_1"}},
			true,
		},
		{
			"tool part in other session",
			opencode.MessagePartUpdatedEvent{Part: opencode.ToolPart{ID: "prt_2", SessionID: "ses_2"}},
			false,
		},
		{
			"step finish has no session scope",
			opencode.MessagePartUpdatedEvent{Part: opencode.StepFinishPart{Reason: "stop"}},
			true,
		},
		{
			"status in session",
			opencode.SessionStatusEvent{SessionID: "ses_1", Status: opencode.SessionStatusBusy},
			true,
		},
		{
			"idle in other session",
			opencode.SessionIdleEvent{SessionID: "ses_2"},
			false,
		},
		{
			"session error without session",
			opencode.SessionErrorEvent{},
			true,
		},
		{
			"stream error",
			opencode.ErrorEvent{Error: errors.New("boom")},
			true,
		},
		{
			"unknown event",
			opencode.UnknownEvent{Tag: "server.connected"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inSession(tt.ev, "ses_1"))
		})
	}
}
