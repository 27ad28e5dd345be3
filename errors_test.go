package reactor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOErrorKind_String(t *testing.T) {
	cases := map[IOErrorKind]string{
		KindEndOfFile:           "EndOfFile",
		KindConnectionRefused:   "ConnectionRefused",
		KindConnectionReset:     "ConnectionReset",
		KindPermissionDenied:    "PermissionDenied",
		KindBrokenPipe:          "BrokenPipe",
		KindNotConnected:        "NotConnected",
		KindConnectionAborted:   "ConnectionAborted",
		KindResourceUnavailable: "ResourceUnavailable",
		KindClosed:              "Closed",
		KindOtherIOError:        "OtherIoError",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestIOError_Error(t *testing.T) {
	e := &IOError{Kind: KindBrokenPipe, Desc: "broken pipe"}
	assert.Equal(t, "BrokenPipe: broken pipe", e.Error())

	e.Detail = "write: broken pipe"
	assert.Equal(t, "BrokenPipe: broken pipe (write: broken pipe)", e.Error())
}

func TestIOError_Is(t *testing.T) {
	a := &IOError{Kind: KindClosed, Desc: "source is closed"}
	b := &IOError{Kind: KindClosed, Desc: "different description"}
	c := &IOError{Kind: KindBrokenPipe, Desc: "broken pipe"}

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
	assert.True(t, errors.Is(ErrClosed, a))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("boom")
	wrapped := WrapError("tcp: connect", cause)
	require.Error(t, wrapped)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "tcp: connect")
	assert.Contains(t, wrapped.Error(), "boom")
}
