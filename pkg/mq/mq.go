// Package mq RabbitMQ消息发布与消费的薄封装
//
// 拓扑：
//
//	Publisher ──(routing key: review.created)──▶ topic Exchange ──▶ Queue(绑定 review.*) ──▶ Consumer
//
// 消息体统一为JSON，DeliveryMode=Persistent。
// 消费采用手动确认：处理成功Ack，处理失败Nack并重新入队。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher 消息发布者
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher 连接RabbitMQ并声明Exchange
func NewPublisher(url, exchange, exchangeType string, logger *zap.Logger) (*Publisher, error) {
	conn, channel, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	logger.Info("消息发布者已创建", zap.String("exchange", exchange), zap.String("type", exchangeType))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Exchange 返回Exchange名称
func (p *Publisher) Exchange() string {
	return p.exchange
}

// Publish 发布JSON消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.logger.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

// Handler 消息处理函数，返回错误时消息重新入队
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewConsumer 声明Exchange、Queue并按routingKeys绑定
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	conn, channel, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = closeAll(channel, conn)
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = closeAll(channel, conn)
			return nil, fmt.Errorf("绑定Queue失败(%s): %w", key, err)
		}
	}

	logger.Info("消息消费者已创建", zap.String("queue", q.Name), zap.Strings("routing_keys", routingKeys))

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
		logger:  logger,
	}, nil
}

// Consume 阻塞消费，直到ctx取消或Channel关闭
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	c.logger.Info("开始消费消息", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("消费者退出", zap.String("queue", c.queue))
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("消息Channel已关闭")
			}
			handleDelivery(ctx, msg, handler, c.logger)
		}
	}
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, handler Handler, logger *zap.Logger) {
	if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
		logger.Warn("消息处理失败，重新入队",
			zap.String("routing_key", msg.RoutingKey),
			zap.Bool("redelivered", msg.Redelivered),
			zap.Error(err),
		)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

func dial(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = closeAll(channel, conn)
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	return conn, channel, nil
}

func closeAll(channel *amqp.Channel, conn *amqp.Connection) error {
	var firstErr error
	if channel != nil {
		if err := channel.Close(); err != nil {
			firstErr = err
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
