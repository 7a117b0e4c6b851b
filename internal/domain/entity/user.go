package entity

import (
	"time"
)

// User 用户实体
type User struct {
	ID         string `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalID string `json:"external_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	// AuthSource 身份来源：jwt 或 device
	AuthSource  string `json:"auth_source" gorm:"type:varchar(20)"`
	DisplayName string `json:"display_name,omitempty" gorm:"type:varchar(255)"`

	LinkedInMemberURN      string     `json:"linkedin_member_urn,omitempty" gorm:"column:linkedin_member_urn;type:varchar(255)"`
	LinkedInAccessToken    string     `json:"-" gorm:"column:linkedin_access_token;type:text"`
	LinkedInTokenExpiresAt *time.Time `json:"linkedin_token_expires_at,omitempty" gorm:"column:linkedin_token_expires_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// NewUser 创建新用户
func NewUser(externalID, authSource string) *User {
	now := time.Now()
	return &User{
		ExternalID: externalID,
		AuthSource: authSource,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// LinkedInConnected 是否已绑定可用的 LinkedIn 凭据
func (u *User) LinkedInConnected(now time.Time) bool {
	if u.LinkedInMemberURN == "" || u.LinkedInAccessToken == "" {
		return false
	}
	return u.LinkedInTokenExpiresAt == nil || now.Before(*u.LinkedInTokenExpiresAt)
}

// ConnectLinkedIn 绑定 LinkedIn 凭据
func (u *User) ConnectLinkedIn(memberURN, accessToken string, expiresAt *time.Time) {
	u.LinkedInMemberURN = memberURN
	u.LinkedInAccessToken = accessToken
	u.LinkedInTokenExpiresAt = expiresAt
	u.UpdatedAt = time.Now()
}

// DisconnectLinkedIn 解除绑定
func (u *User) DisconnectLinkedIn() {
	u.LinkedInMemberURN = ""
	u.LinkedInAccessToken = ""
	u.LinkedInTokenExpiresAt = nil
	u.UpdatedAt = time.Now()
}
