package reactor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingChannel_SendRecv(t *testing.T) {
	tx, rx := CreateBlockingChannel[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	var recvErr error
	go func() {
		defer wg.Done()
		got, recvErr = rx.Recv()
	}()

	// Give Recv a chance to start blocking before Send, to exercise the
	// condvar wakeup path rather than the non-empty-queue fast path.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tx.Send(42))
	wg.Wait()

	require.NoError(t, recvErr)
	assert.Equal(t, 42, got)
}

func TestBlockingChannel_DisconnectAfterAllSendersClose(t *testing.T) {
	tx, rx := CreateBlockingChannel[string]()
	tx.Close()

	_, err := rx.Recv()
	assert.True(t, errors.Is(err, ErrChannelDisconnected))
}

func TestBlockingChannel_DrainsQueueBeforeDisconnecting(t *testing.T) {
	tx, rx := CreateBlockingChannel[string]()
	require.NoError(t, tx.Send("first"))
	tx.Close()

	v, err := rx.Recv()
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	_, err = rx.Recv()
	assert.True(t, errors.Is(err, ErrChannelDisconnected))
}

func TestBlockingChannel_CloneKeepsChannelOpen(t *testing.T) {
	tx, rx := CreateBlockingChannel[int]()
	clone := tx.Clone()
	tx.Close()

	require.NoError(t, clone.Send(7))
	v, err := rx.Recv()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	clone.Close()
	_, err = rx.Recv()
	assert.True(t, errors.Is(err, ErrChannelDisconnected))
}

func TestBlockingChannel_SendAfterReceiverClosed(t *testing.T) {
	tx, rx := CreateBlockingChannel[int]()
	rx.Close()

	err := tx.Send(1)
	assert.True(t, errors.Is(err, ErrChannelDisconnected))
}
