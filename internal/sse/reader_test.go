package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, stream string) [][]byte {
	t.Helper()
	r := NewReader(strings.NewReader(stream))
	var frames [][]byte
	for {
		payload, err := r.Next()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, payload)
	}
}

func TestNext_SingleFrame(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data: {\"type\":\"session.idle\"}\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, `{"type":"session.idle"}`, string(frames[0]))
}

func TestNext_MultipleFrames(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data: one\n\ndata: two\n\ndata: three\n\n")
	require.Len(t, frames, 3)
	assert.Equal(t, "one", string(frames[0]))
	assert.Equal(t, "two", string(frames[1]))
	assert.Equal(t, "three", string(frames[2]))
}

func TestNext_MultiLineData(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data: {\"a\":\ndata: 1}\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "{\"a\":\n1}", string(frames[0]))
}

func TestNext_SkipsCommentsAndKeepalives(t *testing.T) {
	t.Parallel()
	frames := readAll(t, ": keepalive\n\n: ping\ndata: payload\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "payload", string(frames[0]))
}

func TestNext_IgnoresNonDataFields(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "event: message\nid: 42\nretry: 1000\ndata: payload\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "payload", string(frames[0]))
}

func TestNext_CRLFLines(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data: payload\r\n\r\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "payload", string(frames[0]))
}

func TestNext_NoSpaceAfterColon(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data:payload\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "payload", string(frames[0]))
}

func TestNext_EmptyDataLine(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data:\ndata: second\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "\nsecond", string(frames[0]))
}

func TestNext_DiscardsUnterminatedFrame(t *testing.T) {
	t.Parallel()
	frames := readAll(t, "data: complete\n\ndata: cut off")
	require.Len(t, frames, 1)
	assert.Equal(t, "complete", string(frames[0]))
}

func TestNext_EmptyStream(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestNext_LargePayload(t *testing.T) {
	t.Parallel()
	big := strings.Repeat("x", 512*1024)
	frames := readAll(t, "data: "+big+"\n\n")
	require.Len(t, frames, 1)
	assert.Equal(t, big, string(frames[0]))
}
