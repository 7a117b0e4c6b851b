// Package linkedin 提供 LinkedIn Posts API 发布客户端
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"linkedin-post-ai-api/internal/config"
)

var tracer = otel.Tracer("linkedin")

const (
	defaultBaseURL    = "https://api.linkedin.com"
	defaultAPIVersion = "202409"
	defaultVisibility = "PUBLIC"
	defaultTimeout    = 15 * time.Second

	maxErrorBody = 2048
)

var (
	// ErrTokenRejected LinkedIn 拒绝访问令牌（过期、撤销或权限不足）
	ErrTokenRejected = errors.New("linkedin rejected access token")
	// ErrPublishFailed 发布请求失败
	ErrPublishFailed = errors.New("linkedin publish failed")
)

// PublishRequest 发布请求
type PublishRequest struct {
	// AuthorURN 例如 urn:li:person:abc123
	AuthorURN   string
	AccessToken string
	// Text 已组装好的帖子正文（可含 Markdown，发布前会展平并转义）
	Text string
}

// Client LinkedIn 发布客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	visibility string
}

// NewClient 创建客户端
func NewClient(cfg config.LinkedInConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP 使用指定的 http.Client 创建客户端
func NewClientWithHTTP(cfg config.LinkedInConfig, hc *http.Client) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}
	visibility := strings.TrimSpace(cfg.Visibility)
	if visibility == "" {
		visibility = defaultVisibility
	}
	return &Client{
		httpClient: hc,
		baseURL:    baseURL,
		apiVersion: version,
		visibility: visibility,
	}
}

type postBody struct {
	Author                    string       `json:"author"`
	Commentary                string       `json:"commentary"`
	Visibility                string       `json:"visibility"`
	Distribution              distribution `json:"distribution"`
	LifecycleState            string       `json:"lifecycleState"`
	IsReshareDisabledByAuthor bool         `json:"isReshareDisabledByAuthor"`
}

type distribution struct {
	FeedDistribution               string   `json:"feedDistribution"`
	TargetEntities                 []string `json:"targetEntities"`
	ThirdPartyDistributionChannels []string `json:"thirdPartyDistributionChannels"`
}

// Publish 发布帖子，返回 LinkedIn 帖子 URN。只发起一次请求，不重试。
func (c *Client) Publish(ctx context.Context, req PublishRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "linkedin.Publish")
	defer span.End()

	author := strings.TrimSpace(req.AuthorURN)
	token := strings.TrimSpace(req.AccessToken)
	if author == "" || token == "" {
		return "", fmt.Errorf("%w: missing author or access token", ErrTokenRejected)
	}
	commentary := EscapeCommentary(PlainText(req.Text))
	if commentary == "" {
		return "", fmt.Errorf("%w: empty post text", ErrPublishFailed)
	}
	span.SetAttributes(
		attribute.String("linkedin.author", author),
		attribute.Int("linkedin.commentary_len", len(commentary)),
	)

	body, err := json.Marshal(postBody{
		Author:     author,
		Commentary: commentary,
		Visibility: c.visibility,
		Distribution: distribution{
			FeedDistribution:               "MAIN_FEED",
			TargetEntities:                 []string{},
			ThirdPartyDistributionChannels: []string{},
		},
		LifecycleState: "PUBLISHED",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/posts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	httpReq.Header.Set("LinkedIn-Version", c.apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		err = fmt.Errorf("%w: status %d: %s", ErrTokenRejected, resp.StatusCode, strings.TrimSpace(string(raw)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		err = fmt.Errorf("%w: status %d: %s", ErrPublishFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish rejected")
		return "", err
	}

	if id := strings.TrimSpace(resp.Header.Get("x-restli-id")); id != "" {
		return id, nil
	}
	var decoded struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &decoded) == nil && decoded.ID != "" {
		return decoded.ID, nil
	}
	return "", fmt.Errorf("%w: response carried no post id", ErrPublishFailed)
}
