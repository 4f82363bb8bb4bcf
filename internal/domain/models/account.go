// Package models defines the domain models for the oral risk screening service.
// This file contains the Account domain model.
package models

import (
	"time"

	"github.com/turtacn/oralrisk/pkg/constants"
)

// Account represents a registered operator of the screening application.
// Accounts are append-only: once created they are never mutated or deleted.
// Account 代表筛查应用中已注册的操作员。
// 账户只追加：创建后不会被修改或删除。
type Account struct {
	// Username is the primary, case-sensitive identifier.
	// Username 是主要的、区分大小写的标识符。
	Username string `json:"username" gorm:"primaryKey;size:128"`

	// Email is an optional alternative login identifier.
	// Email 是可选的备用登录标识符。
	Email string `json:"email,omitempty" gorm:"size:255;index"`

	// Phone is an optional alternative login identifier.
	// Phone 是可选的备用登录标识符。
	Phone string `json:"phone,omitempty" gorm:"size:64;index"`

	// PasswordHash is the salted one-way hash of the password. It is never serialized to clients.
	// PasswordHash 是密码的加盐单向哈希，永远不会序列化给客户端。
	PasswordHash string `json:"-" gorm:"not null"`

	// CreatedAt is the timestamp when the account was registered.
	// CreatedAt 是账户注册的时间戳。
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the gorm table name.
func (Account) TableName() string {
	return "accounts"
}

// Identifier returns the value matched by a lookup of the given login type.
func (a *Account) Identifier(loginType constants.LoginType) string {
	switch loginType {
	case constants.LoginTypeEmail:
		return a.Email
	case constants.LoginTypePhone:
		return a.Phone
	default:
		return a.Username
	}
}

// Collides reports whether other shares any non-empty unique identifier with a.
func (a *Account) Collides(other *Account) bool {
	if a.Username == other.Username {
		return true
	}
	if a.Email != "" && a.Email == other.Email {
		return true
	}
	return a.Phone != "" && a.Phone == other.Phone
}
