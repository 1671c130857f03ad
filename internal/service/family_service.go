package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timekids/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken 在用户名已被占用时返回
	ErrUsernameTaken = errors.New("username already taken")
	// ErrNotParent 在非家长账号尝试家长专属操作时返回
	ErrNotParent = errors.New("account is not a parent")
	// ErrInvalidAccount 在账号输入不完整时返回
	ErrInvalidAccount = errors.New("invalid account input")
)

// FamilyService 负责家庭成员账号与亲子关系
// 跨账号操作前必须通过 CanActOn 做显式授权检查
type FamilyService struct {
	db *gorm.DB
}

// ChildInput 定义家长创建子账号时的输入
type ChildInput struct {
	Username    string
	Password    string
	DisplayName string
}

// NewFamilyService 构造 FamilyService
func NewFamilyService(gdb *gorm.DB) *FamilyService {
	return &FamilyService{db: gdb}
}

// GetUser 根据 ID 获取用户
func (s *FamilyService) GetUser(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// CreateChild 由家长创建子账号：建立用户与亲子关系，任一步失败整体回滚
func (s *FamilyService) CreateChild(parentID uint, input ChildInput) (*db.User, error) {
	parent, err := s.GetUser(parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != db.RoleParent {
		return nil, ErrNotParent
	}

	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	displayName := strings.TrimSpace(input.DisplayName)
	if username == "" || password == "" || displayName == "" {
		return nil, ErrInvalidAccount
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	today := time.Now().In(time.Local)
	startDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	child := db.User{
		Username:    username,
		Password:    string(hashed),
		DisplayName: displayName,
		Role:        db.RoleChild,
		StartDate:   &startDate,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.User
		if err := tx.Where("username = ?", username).First(&existing).Error; err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&child).Error; err != nil {
			return err
		}

		return tx.Create(&db.FamilyRelation{ParentID: parentID, ChildID: child.ID}).Error
	}); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create child: %w", err)
	}

	return &child, nil
}

// Children 返回家长名下的全部子账号
func (s *FamilyService) Children(parentID uint) ([]db.User, error) {
	var relations []db.FamilyRelation
	if err := s.db.Where("parent_id = ?", parentID).Find(&relations).Error; err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}

	if len(relations) == 0 {
		return []db.User{}, nil
	}

	childIDs := make([]uint, 0, len(relations))
	for _, r := range relations {
		childIDs = append(childIDs, r.ChildID)
	}

	var children []db.User
	if err := s.db.Where("id IN ?", childIDs).Order("id ASC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	return children, nil
}

// CanActOn 判断 actor 是否可以操作 target 的数据：
// 本人恒为允许；否则必须存在 actor 为家长、target 为其孩子的关系记录。
func (s *FamilyService) CanActOn(actorID, targetID uint) (bool, error) {
	if actorID == targetID {
		return true, nil
	}

	var relation db.FamilyRelation
	err := s.db.Where("parent_id = ? AND child_id = ?", actorID, targetID).First(&relation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check relation: %w", err)
	}

	return true, nil
}
