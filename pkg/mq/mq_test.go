package mq

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAcknowledger 记录Ack/Nack调用
type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

func TestHandleDelivery_AckOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, RoutingKey: "review.created", Body: []byte(`{"review_id":1}`)}

	var gotKey string
	handleDelivery(context.Background(), msg, func(_ context.Context, key string, body []byte) error {
		gotKey = key
		return nil
	}, zap.NewNop())

	assert.Equal(t, "review.created", gotKey)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestHandleDelivery_NackRequeueOnFailure(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, RoutingKey: "review.deleted"}

	handleDelivery(context.Background(), msg, func(context.Context, string, []byte) error {
		return errors.New("下游不可用")
	}, zap.NewNop())

	assert.Zero(t, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeue)
}

// TestPubSub_Integration 需要真实RabbitMQ，设置RABBITMQ_URL后运行
func TestPubSub_Integration(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("未设置RABBITMQ_URL，跳过集成测试")
	}

	logger := zap.NewNop()
	consumer, err := NewConsumer(url, "bookreview.test.events", "topic", "bookreview.test.audit", []string{"review.*"}, logger)
	require.NoError(t, err)
	defer consumer.Close()

	publisher, err := NewPublisher(url, "bookreview.test.events", "topic", logger)
	require.NoError(t, err)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan string, 1)
	go func() {
		_ = consumer.Consume(ctx, func(_ context.Context, key string, _ []byte) error {
			received <- key
			return nil
		})
	}()

	require.NoError(t, publisher.Publish(ctx, "review.created", map[string]int{"review_id": 1}))

	select {
	case key := <-received:
		assert.Equal(t, "review.created", key)
	case <-ctx.Done():
		t.Fatal("超时未收到消息")
	}
}
