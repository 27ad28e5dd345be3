package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct{ id SourceID }

func (f *fakeSource) sourceID() *SourceID { return &f.id }

func TestEventType_String(t *testing.T) {
	cases := map[EventType]string{
		EventDataAvailable:   "DataAvailable",
		EventConnectComplete: "ConnectComplete",
		EventClientConnected: "ClientConnected",
		EventTimerFired:      "TimerFired",
		EventChannelReadable: "ChannelReadable",
		EventStreamClosed:    "StreamClosed",
		EventIOError:         "IOError",
	}
	for typ, want := range cases {
		assert.Equal(t, want, typ.String())
	}
	assert.Equal(t, "Unknown", EventType(99).String())
}

func TestOriginatesFrom(t *testing.T) {
	a := &fakeSource{}
	b := &fakeSource{}

	ev := Event{Source: a.sourceID()}
	assert.True(t, OriginatesFrom(ev, a))
	assert.False(t, OriginatesFrom(ev, b))
}
