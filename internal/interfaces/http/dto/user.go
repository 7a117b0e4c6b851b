package dto

import (
	"time"

	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/domain/service"
)

// UserResponse 用户响应，不包含 LinkedIn 访问令牌
type UserResponse struct {
	ID                string     `json:"id"`
	AuthSource        string     `json:"auth_source"`
	DisplayName       string     `json:"display_name,omitempty"`
	LinkedInConnected bool       `json:"linkedin_connected"`
	LinkedInMemberURN string     `json:"linkedin_member_urn,omitempty"`
	LinkedInExpiresAt *time.Time `json:"linkedin_token_expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// OnboardingRequest 保存引导问卷请求
type OnboardingRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// OnboardingResponse 引导问卷响应
type OnboardingResponse struct {
	Answers   map[string]string `json:"answers"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LinkedInConnectRequest 绑定 LinkedIn 凭据请求
type LinkedInConnectRequest struct {
	MemberURN   string `json:"member_urn" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
	// ExpiresIn 令牌剩余有效秒数，0 表示未知
	ExpiresIn int64 `json:"expires_in" binding:"min=0"`
}

// ExpiresInDuration 有效期
func (r *LinkedInConnectRequest) ExpiresInDuration() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}

// UsageResponse 当日 Token 用量
type UsageResponse struct {
	service.LLMUsage
	TotalTokens int64 `json:"total_tokens"`
	// DailyLimit 0 表示不限制
	DailyLimit int64 `json:"daily_limit"`
	Remaining  int64 `json:"remaining,omitempty"`
	// Workflows 按生成环节聚合，仅在开启调用明细时返回
	Workflows []entity.WorkflowUsage `json:"workflows,omitempty"`
}

// ToUserResponse 实体转换为响应
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:                u.ID,
		AuthSource:        u.AuthSource,
		DisplayName:       u.DisplayName,
		LinkedInConnected: u.LinkedInConnected(time.Now()),
		LinkedInMemberURN: u.LinkedInMemberURN,
		LinkedInExpiresAt: u.LinkedInTokenExpiresAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// ToOnboardingResponse 实体转换为响应
func ToOnboardingResponse(p *entity.OnboardingProfile) *OnboardingResponse {
	if p == nil {
		return nil
	}
	answers := p.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	return &OnboardingResponse{
		Answers:   answers,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToUsageResponse 用量转换为响应
func ToUsageResponse(u service.LLMUsage, limit int64) *UsageResponse {
	total := u.TotalTokens()
	resp := &UsageResponse{
		LLMUsage:    u,
		TotalTokens: total,
		DailyLimit:  limit,
	}
	if limit > 0 && total < limit {
		resp.Remaining = limit - total
	}
	return resp
}
