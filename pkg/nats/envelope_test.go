package nats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotha-be/pkg/events"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	ev := events.NewUnansweredStorageFailed("Posso estagiar à noite?", errors.New("disk full"))

	data, err := encode(ev)
	require.NoError(t, err)

	got, err := decode(Subject(ev.EventType()), data)
	require.NoError(t, err)
	assert.Equal(t, events.TypeUnansweredStorageFailed, got.EventType())
	assert.Equal(t, "Posso estagiar à noite?", got.Payload()["question"])
	assert.Equal(t, "disk full", got.Payload()["error"])
	assert.WithinDuration(t, ev.Timestamp(), got.Timestamp(), time.Millisecond)
}

func TestDecodeLegacyPayload(t *testing.T) {
	got, err := decode("events.UNANSWERED_RECORDED", []byte(`{"data":{"question":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.TypeUnansweredRecorded, got.EventType())
	assert.False(t, got.Timestamp().IsZero())

	_, err = decode("events.X", []byte("not json"))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.CORPUS_INDEXED", Subject(events.TypeCorpusIndexed))
}
