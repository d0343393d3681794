package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noFlushWriter struct {
	http.ResponseWriter
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestEventStream_Send(t *testing.T) {
	w := httptest.NewRecorder()
	stream, err := newEventStream(w)
	require.NoError(t, err)

	require.NoError(t, stream.send(eventStep, map[string]string{"step": "fetched"}))
	require.NoError(t, stream.send(eventResult, map[string]int{"jobs_found": 2}))

	assert.Equal(t,
		"id: 1\nevent: step\ndata: {\"step\":\"fetched\"}\n\n"+
			"id: 2\nevent: result\ndata: {\"jobs_found\":2}\n\n",
		w.Body.String())
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.True(t, w.Flushed)
}

func TestEventStream_RequiresFlusher(t *testing.T) {
	_, err := newEventStream(noFlushWriter{httptest.NewRecorder()})
	assert.ErrorIs(t, err, errStreamingUnsupported)
}

func TestEventStream_StopsAfterWriteFailure(t *testing.T) {
	stream, err := newEventStream(failingWriter{httptest.NewRecorder()})
	require.NoError(t, err)

	first := stream.send(eventStep, "a")
	require.Error(t, first)
	assert.Equal(t, first, stream.send(eventStep, "b"))
	assert.Equal(t, 1, stream.nextID)
}
