package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User 定义了家庭成员账号模型
// Role 为 parent/child；子账号由家长创建，StartDate 记录开始使用的日期
type User struct {
	gorm.Model
	Username    string `gorm:"unique;not null"`
	Password    string `gorm:"not null"`
	DisplayName string
	Role        string `gorm:"not null;default:parent"`
	StartDate   *time.Time
	AvatarURL   string
}

// FamilyRelation 记录亲子关系，是跨账号授权的唯一依据
// ParentID + ChildID 采用唯一索引，避免重复登记
type FamilyRelation struct {
	gorm.Model
	ParentID uint `gorm:"index;index:idx_family_relation_unique,unique"`
	ChildID  uint `gorm:"index:idx_family_relation_unique,unique"`
}

// EnsureParent 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的家长账号。
func EnsureParent(username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{
			Username:    trimmedUser,
			Password:    string(hashed),
			DisplayName: trimmedUser,
			Role:        RoleParent,
		}).Error
	}

	return nil
}
