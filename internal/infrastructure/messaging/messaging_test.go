package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestBackoffConfig_CalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 5 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(3))
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(10))
}

func TestBackoffConfig_ZeroRetryCappedAtMax(t *testing.T) {
	cfg := BackoffConfig{Initial: 10 * time.Second, Max: 5 * time.Second, Multiplier: 2}
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(0))
}

func TestMessage_TracePropagation(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	rdb := newTestRedis(t)
	_, err := NewProducer(rdb, 0).PublishPostPublish(ctx, &PostPublishMessage{PostID: "p-1", UserID: "u-1", Attempt: 1})
	require.NoError(t, err)

	msgs, err := rdb.XRange(context.Background(), string(StreamPostPublish), "-", "+").Result()
	require.NoError(t, err)
	msg, ok := decode(msgs[0])
	require.True(t, ok)
	assert.NotEmpty(t, msg.Header("traceparent"))
	assert.Equal(t, 1, msg.Version)

	remote := trace.SpanContextFromContext(msg.ExtractTrace(context.Background()))
	assert.Equal(t, traceID, remote.TraceID())
	assert.True(t, remote.IsRemote())
}

func TestProducer_PublishPostPublish(t *testing.T) {
	rdb := newTestRedis(t)
	p := NewProducer(rdb, 0)
	ctx := context.Background()

	id, err := p.PublishPostPublish(ctx, &PostPublishMessage{PostID: "p-1", UserID: "u-1", Attempt: 2, RequestID: "r-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := rdb.XRange(ctx, string(StreamPostPublish), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msg, ok := decode(msgs[0])
	require.True(t, ok)
	assert.Equal(t, "p-1:2", msg.ID)
	assert.Equal(t, MessageTypePostPublish, msg.Type)
	assert.Equal(t, "u-1", msg.UserID)
	assert.Equal(t, "p-1", msg.Header(HeaderPostID))
	assert.Equal(t, "r-1", msg.Header(HeaderRequestID))

	var job PostPublishMessage
	require.NoError(t, msg.UnmarshalPayload(&job))
	assert.Equal(t, 2, job.Attempt)
}

func TestConsumer_DeliversToHandler(t *testing.T) {
	rdb := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamPostPublish,
		Group:        ConsumerGroupPublisher,
		ConsumerName: "w-1",
		BlockTimeout: 50 * time.Millisecond,
	})
	got := make(chan PostPublishMessage, 1)
	c.RegisterHandler(MessageTypePostPublish, func(ctx context.Context, msg *Message) error {
		var job PostPublishMessage
		if err := msg.UnmarshalPayload(&job); err != nil {
			return err
		}
		got <- job
		return nil
	})
	require.NoError(t, c.Start(ctx))
	defer c.Stop()
	assert.Error(t, c.Start(ctx))

	_, err := NewProducer(rdb, 10).PublishPostPublish(ctx, &PostPublishMessage{PostID: "p-1", UserID: "u-1", Attempt: 1})
	require.NoError(t, err)

	select {
	case job := <-got:
		assert.Equal(t, "p-1", job.PostID)
	case <-time.After(3 * time.Second):
		t.Fatal("handler not invoked")
	}

	assert.Eventually(t, func() bool {
		summary, err := rdb.XPending(ctx, string(StreamPostPublish), string(ConsumerGroupPublisher)).Result()
		return err == nil && summary.Count == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestConsumer_FailureExceedingRetriesGoesToDLQ(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamPostPublish,
		Group:        ConsumerGroupPublisher,
		ConsumerName: "w-1",
		RetryLimit:   1,
	})
	require.NoError(t, c.ensureGroup(ctx))
	require.NoError(t, c.ensureGroup(ctx))

	var calls atomic.Int32
	c.RegisterHandler(MessageTypePostPublish, func(context.Context, *Message) error {
		calls.Add(1)
		return errors.New("linkedin down")
	})

	_, err := NewProducer(rdb, 10).PublishPostPublish(ctx, &PostPublishMessage{PostID: "p-1", UserID: "u-1", Attempt: 1})
	require.NoError(t, err)

	streams, err := rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    string(ConsumerGroupPublisher),
		Consumer: "w-1",
		Streams:  []string{string(StreamPostPublish), ">"},
		Count:    1,
	}).Result()
	require.NoError(t, err)
	c.processMessage(ctx, streams[0].Messages[0])

	assert.EqualValues(t, 1, calls.Load())
	n, err := rdb.XLen(ctx, StreamPostPublish.DLQStream()).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	summary, err := rdb.XPending(ctx, string(StreamPostPublish), string(ConsumerGroupPublisher)).Result()
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
}

func TestConsumer_InvalidMessageAcked(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	c := NewConsumer(rdb, ConsumerConfig{Stream: StreamPostPublish, Group: ConsumerGroupPublisher, ConsumerName: "w-1"})
	require.NoError(t, c.ensureGroup(ctx))

	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{Stream: string(StreamPostPublish), Values: map[string]any{"data": "{"}}).Err())
	streams, err := rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    string(ConsumerGroupPublisher),
		Consumer: "w-1",
		Streams:  []string{string(StreamPostPublish), ">"},
		Count:    1,
	}).Result()
	require.NoError(t, err)

	c.processMessage(ctx, streams[0].Messages[0])

	summary, err := rdb.XPending(ctx, string(StreamPostPublish), string(ConsumerGroupPublisher)).Result()
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
}
