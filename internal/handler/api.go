package handler

import (
	"github.com/timekids/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	family    *service.FamilyService
	schedule  *service.ScheduleService
	records   *service.RecordService
	reports   *service.ReportService
	comments  *service.CommentService
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:        db,
		family:    service.NewFamilyService(db),
		schedule:  service.NewScheduleService(db),
		records:   service.NewRecordService(db),
		reports:   service.NewReportService(db),
		comments:  service.NewCommentService(db),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
