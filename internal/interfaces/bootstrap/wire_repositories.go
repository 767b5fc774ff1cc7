package bootstrap

import (
	"gorm.io/gorm"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/technique"
	"curriculum/internal/infrastructure/repository"
	"curriculum/internal/shared/db"
	"curriculum/internal/shared/logger"
)

// ============================================================
// Section 2: Repositories
// ============================================================

// Repositories holds every repository instance built on the database handle.
type Repositories struct {
	Courses    *repository.CourseRepositoryImpl
	Techniques technique.Repository
	Audit      course.AuditRepository
	TxManager  *db.TransactionManager
}

func newRepositories(gdb *gorm.DB, log logger.Interface) *Repositories {
	return &Repositories{
		Courses:    repository.NewCourseRepository(gdb, log),
		Techniques: repository.NewTechniqueRepository(gdb, log),
		Audit:      repository.NewAuditRepository(gdb, log),
		TxManager:  db.NewTransactionManager(gdb),
	}
}
