package model

import (
	"time"
)

// User is owned by the account service. The cart core only reads it for
// identity resolution and order recipient details.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`              // 사용자 ID
	Email        string    `gorm:"uniqueIndex;not null" json:"email"` // 이메일
	PasswordHash string    `gorm:"not null" json:"-"`                 // 비밀번호 해시
	Name         string    `gorm:"not null" json:"name"`              // 이름
	Phone        string    `json:"phone"`                             // 전화번호
	Address      string    `json:"address"`                           // 주소
	CreatedAt    time.Time `json:"created_at"`                        // 생성 시각
	UpdatedAt    time.Time `json:"updated_at"`                        // 수정 시각
}

func (User) TableName() string {
	return "users"
}
