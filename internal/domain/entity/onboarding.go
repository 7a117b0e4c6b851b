package entity

import (
	"strings"
	"time"
)

// OnboardingProfile 用户引导问卷答案，作为生成时的画像上下文
type OnboardingProfile struct {
	UserID    string            `json:"user_id" gorm:"type:uuid;primaryKey"`
	Answers   map[string]string `json:"answers" gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (OnboardingProfile) TableName() string {
	return "onboarding_profiles"
}

// Normalized 返回去掉空白键值后的答案副本
func (p *OnboardingProfile) Normalized() map[string]string {
	if p == nil || len(p.Answers) == 0 {
		return nil
	}
	out := make(map[string]string, len(p.Answers))
	for k, v := range p.Answers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
