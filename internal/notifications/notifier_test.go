package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_DisabledWithoutRedis(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishBroadcast(context.Background(), "payload"))
	assert.NoError(t, n.PublishEvent(context.Background(), "post_created", nil))
	assert.NoError(t, n.StartSubscriber(context.Background(), func(string) {}))

	var nilNotifier *Notifier
	assert.False(t, nilNotifier.Enabled())
}

func TestEncodeEvent(t *testing.T) {
	t.Parallel()
	msg, err := EncodeEvent("comment_added", map[string]string{"post_id": "p1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"comment_added","payload":{"post_id":"p1"}}`, msg)

	_, err = EncodeEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestNotifier_StartSubscriber_StopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartSubscriber(ctx, func(payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishBroadcast(context.Background(), "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	// Drain the pre-cancel message to avoid false positives.
	select {
	case <-payloads:
	default:
	}

	require.NoError(t, n.PublishBroadcast(context.Background(), "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_SubscriberSurvivesPanics(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	require.NoError(t, n.StartSubscriber(ctx, func(payload string) {
		atomic.AddInt32(&calls, 1)
		if payload == "boom" {
			panic("handler failure")
		}
	}))

	require.NoError(t, n.PublishBroadcast(context.Background(), "boom"))
	require.NoError(t, n.PublishBroadcast(context.Background(), "fine"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, time.Second, 10*time.Millisecond)
}
