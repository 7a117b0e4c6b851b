// Package messaging 提供基于 Redis Stream 的异步任务队列
package messaging

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// 消息信封版本，载荷结构不兼容变更时递增
const messageVersion = 1

// 流、消费者组与消息类型
const (
	StreamPostPublish Stream = "stream:post:publish"

	ConsumerGroupPublisher ConsumerGroup = "cg-post-publisher"

	MessageTypePostPublish = "post_publish"
)

// 常用消息头
const (
	HeaderPostID    = "post_id"
	HeaderRequestID = "request_id"
)

// Stream Redis Stream 名称
type Stream string

// DLQStream 对应的死信流
func (s Stream) DLQStream() string {
	return "dlq:" + string(s)
}

// ConsumerGroup 消费者组名称
type ConsumerGroup string

// Message 流中传递的消息信封。Headers 同时承载 W3C traceparent，使消费端延续生产端的链路
type Message struct {
	ID        string            `json:"id"`
	Version   int               `json:"v"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	Payload   json.RawMessage   `json:"payload"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 以 JSON 编码载荷创建消息
func NewMessage(id, msgType, userID string, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:        id,
		Version:   messageVersion,
		Type:      msgType,
		UserID:    userID,
		Payload:   raw,
		Headers:   map[string]string{},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetHeader 设置消息头，空值忽略
func (m *Message) SetHeader(key, value string) {
	if value == "" {
		return
	}
	if m.Headers == nil {
		m.Headers = map[string]string{}
	}
	m.Headers[key] = value
}

// Header 读取消息头
func (m *Message) Header(key string) string {
	return m.Headers[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// InjectTrace 把当前 span 上下文写入消息头
func (m *Message) InjectTrace(ctx context.Context) {
	if m.Headers == nil {
		m.Headers = map[string]string{}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(m.Headers))
}

// ExtractTrace 从消息头恢复远端 span 上下文
func (m *Message) ExtractTrace(ctx context.Context) context.Context {
	if len(m.Headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(m.Headers))
}

// BackoffConfig 失败重投的指数退避
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoffConfig 1s 起步，翻倍，最长 1 分钟
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    time.Second,
		Max:        time.Minute,
		Multiplier: 2,
	}
}

// CalculateBackoff 第 retryCount 次重投前的等待时间
func (c BackoffConfig) CalculateBackoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return min(c.Initial, c.Max)
	}
	d := float64(c.Initial) * math.Pow(c.Multiplier, float64(retryCount))
	if d >= float64(c.Max) || math.IsInf(d, 0) {
		return c.Max
	}
	return time.Duration(d)
}
