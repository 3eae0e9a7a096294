package rabbitmq

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"go.uber.org/zap"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{4, 8 * time.Second},
		{7, maxBackoff},
		{200, maxBackoff},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(time.Second, tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestAttemptFromHeaders(t *testing.T) {
	assert.Equal(t, 1, attemptFromHeaders(nil))
	assert.Equal(t, 1, attemptFromHeaders(amqp.Table{"other": "x"}))
	assert.Equal(t, 3, attemptFromHeaders(amqp.Table{"x-death": []interface{}{1, 2, 3}}))
}

func testTopology() Topology {
	return Topology{
		Exchange:     "metacoach.analysis",
		RequestQueue: "analysis.request",
		StatusQueue:  "analysis.status",
		DLQ:          "analysis.request.dlq",
	}
}

func startBroker(t *testing.T, ctx context.Context) string {
	t.Helper()
	container, err := tcrabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	return url
}

func TestConsumerRequeuesFailedDeliveries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	url := startBroker(t, ctx)

	var calls atomic.Int32
	done := make(chan []byte, 1)
	handler := func(_ context.Context, body []byte) error {
		if calls.Add(1) == 1 {
			return assert.AnError
		}
		done <- body
		return nil
	}

	consumer, err := NewConsumer(ConsumerConfig{
		URL:         url,
		Topology:    testTopology(),
		Prefetch:    1,
		WorkerCount: 2,
		BaseDelayMs: 50,
	}, handler, zap.NewNop())
	require.NoError(t, err)
	defer consumer.Close()

	consumerCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Start(consumerCtx) }()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()

	pub, err := NewPublisher(conn, testTopology().Exchange)
	require.NoError(t, err)
	require.NoError(t, NewRequestPublisher(pub).PublishRequest(ctx, []byte(`{"job_id":"x"}`)))

	select {
	case body := <-done:
		assert.JSONEq(t, `{"job_id":"x"}`, string(body))
	case <-time.After(30 * time.Second):
		t.Fatal("timeout waiting for redelivery")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestPublishersRouteToQueues(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	url := startBroker(t, ctx)

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()

	pub, err := NewPublisher(conn, testTopology().Exchange)
	require.NoError(t, err)
	defer pub.Close()
	require.NoError(t, testTopology().Declare(pub.Channel()))

	require.NoError(t, NewStatusPublisher(pub).PublishStatus(ctx, []byte(`{"status":"done"}`)))
	require.NoError(t, NewDLQPublisher(pub, testTopology().DLQ).PublishToDLQ(ctx, []byte(`{invalid json`), "unmarshal_error"))

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	require.Eventually(t, func() bool {
		msg, ok, err := ch.Get(testTopology().StatusQueue, true)
		return err == nil && ok && string(msg.Body) == `{"status":"done"}`
	}, 10*time.Second, 100*time.Millisecond)

	var dlqMsg amqp.Delivery
	require.Eventually(t, func() bool {
		msg, ok, err := ch.Get(testTopology().DLQ, true)
		dlqMsg = msg
		return err == nil && ok
	}, 10*time.Second, 100*time.Millisecond)
	assert.Equal(t, `{invalid json`, string(dlqMsg.Body))
	assert.Equal(t, "unmarshal_error", dlqMsg.Headers["x-dlq-reason"])
	assert.Equal(t, uint8(amqp.Persistent), dlqMsg.DeliveryMode)
}
