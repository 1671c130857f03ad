package service

import (
	"testing"
	"time"

	"github.com/timekids/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.FamilyRelation{},
		&db.TaskTemplate{},
		&db.ScheduledTask{},
		&db.DailyRecord{},
		&db.WeekComment{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedParentAndChild(t *testing.T) (parent, child db.User) {
	t.Helper()

	parent = db.User{Username: "papa", Password: "x", DisplayName: "パパ", Role: db.RoleParent}
	if err := db.DB.Create(&parent).Error; err != nil {
		t.Fatalf("failed to seed parent: %v", err)
	}

	child = db.User{Username: "hana", Password: "x", DisplayName: "はな", Role: db.RoleChild}
	if err := db.DB.Create(&child).Error; err != nil {
		t.Fatalf("failed to seed child: %v", err)
	}

	if err := db.DB.Create(&db.FamilyRelation{ParentID: parent.ID, ChildID: child.ID}).Error; err != nil {
		t.Fatalf("failed to seed relation: %v", err)
	}

	return parent, child
}

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
