package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

const defaultStreamMaxLen = 100000

// 流条目中存放信封 JSON 的字段
const streamField = "data"

// Producer 向 Redis Stream 追加消息
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer maxLen <= 0 时使用默认上限，流长度近似裁剪
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &Producer{client: client, maxLen: maxLen}
}

// Publish 写入消息并返回流条目 ID
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	msg.InjectTrace(ctx)
	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message %s: %w", msg.ID, err)
	}

	entryID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{streamField: string(data)},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message %s: %w", msg.ID, err)
	}

	span.SetAttributes(attribute.String("stream.entry_id", entryID))
	return entryID, nil
}

// PostPublishMessage 异步发布任务。PostID+Attempt 唯一标识一次发布请求
type PostPublishMessage struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Attempt   int    `json:"attempt"`
	RequestID string `json:"request_id,omitempty"`
}

// MessageID 以帖子与发布次数生成消息 ID，重复入队可据此去重
func (j *PostPublishMessage) MessageID() string {
	return j.PostID + ":" + strconv.Itoa(j.Attempt)
}

// PublishPostPublish 投递异步发布任务
func (p *Producer) PublishPostPublish(ctx context.Context, job *PostPublishMessage) (string, error) {
	msg, err := NewMessage(job.MessageID(), MessageTypePostPublish, job.UserID, job)
	if err != nil {
		return "", err
	}
	msg.SetHeader(HeaderPostID, job.PostID)
	msg.SetHeader(HeaderRequestID, job.RequestID)
	return p.Publish(ctx, StreamPostPublish, msg)
}
