package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Exchange() string { return "bookreview.test" }

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func testEvent() review.Event {
	r := &review.Review{ID: 10, BookID: 3, UserID: 7, Rating: 5}
	return review.NewEvent(review.EventCreated, r, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestReviewPublisher_Publish(t *testing.T) {
	metrics.InitMetrics()
	pub := new(mockPublisher)
	event := testEvent()
	pub.On("Publish", mock.Anything, review.EventCreated, event).Return(nil)

	counter := metrics.MessagesPublishedTotal.WithLabelValues("bookreview.test", review.EventCreated, metrics.ResultSuccess)
	before := testutil.ToFloat64(counter)

	err := NewReviewPublisher(pub, zap.NewNop()).Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	pub.AssertExpectations(t)
}

func TestReviewPublisher_PublishFailure(t *testing.T) {
	metrics.InitMetrics()
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	counter := metrics.MessagesPublishedTotal.WithLabelValues("bookreview.test", review.EventCreated, metrics.ResultFailure)
	before := testutil.ToFloat64(counter)

	err := NewReviewPublisher(pub, zap.NewNop()).Publish(context.Background(), testEvent())

	assert.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestAuditHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewAuditHandler(zap.New(core))

	body, err := json.Marshal(testEvent())
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), review.EventCreated, body))
	entries := logs.FilterMessage("评论审计").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(10), entries[0].ContextMap()["review_id"])
}

func TestAuditHandler_DropsMalformed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewAuditHandler(zap.New(core))

	err := handler(context.Background(), review.EventCreated, []byte("{not json"))

	assert.NoError(t, err, "毒消息不重新入队")
	assert.Equal(t, 1, logs.FilterMessage("无法解析评论事件，丢弃").Len())
}
