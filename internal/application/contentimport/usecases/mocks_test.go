package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/shared"
	"curriculum/internal/domain/technique"
	"curriculum/internal/infrastructure/lock"
)

type mockCourseRepository struct {
	CreateFunc                 func(ctx context.Context, c *course.Course) error
	UpdateFunc                 func(ctx context.Context, c *course.Course) error
	DeleteFunc                 func(ctx context.Context, id uint) error
	GetBySIDFunc               func(ctx context.Context, sid string) (*course.Course, error)
	FindActiveByNaturalKeyFunc func(ctx context.Context, organizationID, naturalKey string) (*course.Course, error)
	ListByOrganizationFunc     func(ctx context.Context, organizationID string) ([]*course.Course, error)
	CountLessonPlansFunc       func(ctx context.Context, courseID uint) (int64, error)
}

func (m *mockCourseRepository) Create(ctx context.Context, c *course.Course) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	c.SetID(1)
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, c *course.Course) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCourseRepository) GetBySID(ctx context.Context, sid string) (*course.Course, error) {
	if m.GetBySIDFunc != nil {
		return m.GetBySIDFunc(ctx, sid)
	}
	return nil, nil
}

func (m *mockCourseRepository) FindActiveByNaturalKey(ctx context.Context, organizationID, naturalKey string) (*course.Course, error) {
	if m.FindActiveByNaturalKeyFunc != nil {
		return m.FindActiveByNaturalKeyFunc(ctx, organizationID, naturalKey)
	}
	return nil, nil
}

func (m *mockCourseRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*course.Course, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, organizationID)
	}
	return nil, nil
}

func (m *mockCourseRepository) CountLessonPlans(ctx context.Context, courseID uint) (int64, error) {
	if m.CountLessonPlansFunc != nil {
		return m.CountLessonPlansFunc(ctx, courseID)
	}
	return 0, nil
}

type mockGraphWriter struct {
	DeleteChildrenFunc    func(ctx context.Context, courseID uint) (course.ChildCounts, error)
	InsertLessonPlansFunc func(ctx context.Context, courseID uint, plans []*course.LessonPlan) error
	InsertRosterFunc      func(ctx context.Context, courseID uint, roster []course.CourseTechnique) error
}

func (m *mockGraphWriter) DeleteChildren(ctx context.Context, courseID uint) (course.ChildCounts, error) {
	if m.DeleteChildrenFunc != nil {
		return m.DeleteChildrenFunc(ctx, courseID)
	}
	return course.ChildCounts{}, nil
}

func (m *mockGraphWriter) InsertLessonPlans(ctx context.Context, courseID uint, plans []*course.LessonPlan) error {
	if m.InsertLessonPlansFunc != nil {
		return m.InsertLessonPlansFunc(ctx, courseID, plans)
	}
	return nil
}

func (m *mockGraphWriter) InsertRoster(ctx context.Context, courseID uint, roster []course.CourseTechnique) error {
	if m.InsertRosterFunc != nil {
		return m.InsertRosterFunc(ctx, courseID, roster)
	}
	return nil
}

type mockTechniqueRepository struct {
	FindBySlugsFunc   func(ctx context.Context, organizationID string, slugs []string) (map[string]*technique.Technique, error)
	InsertOrFetchFunc func(ctx context.Context, t *technique.Technique) (*technique.Technique, bool, error)
	CountBySlugFunc   func(ctx context.Context, organizationID, slug string) (int64, error)

	mu     sync.Mutex
	nextID uint
}

func (m *mockTechniqueRepository) FindBySlugs(ctx context.Context, organizationID string, slugs []string) (map[string]*technique.Technique, error) {
	if m.FindBySlugsFunc != nil {
		return m.FindBySlugsFunc(ctx, organizationID, slugs)
	}
	return map[string]*technique.Technique{}, nil
}

func (m *mockTechniqueRepository) InsertOrFetch(ctx context.Context, t *technique.Technique) (*technique.Technique, bool, error) {
	if m.InsertOrFetchFunc != nil {
		return m.InsertOrFetchFunc(ctx, t)
	}
	m.mu.Lock()
	m.nextID++
	t.SetID(m.nextID)
	m.mu.Unlock()
	return t, true, nil
}

func (m *mockTechniqueRepository) CountBySlug(ctx context.Context, organizationID, slug string) (int64, error) {
	if m.CountBySlugFunc != nil {
		return m.CountBySlugFunc(ctx, organizationID, slug)
	}
	return 0, nil
}

type mockAuditRepository struct {
	LessonLinkStatsFunc               func(ctx context.Context, courseID uint) ([]course.LessonLinkStat, error)
	RosterEntriesFunc                 func(ctx context.Context, courseID uint) ([]course.RosterEntry, error)
	DanglingLessonLinksFunc           func(ctx context.Context, courseID uint, organizationID string) ([]course.DanglingLink, error)
	DanglingRosterLinksFunc           func(ctx context.Context, courseID uint, organizationID string) ([]course.DanglingLink, error)
	LessonTechniquesOutsideRosterFunc func(ctx context.Context, courseID uint) ([]uint, error)
	ParentlessRowsFunc                func(ctx context.Context) ([]course.ParentlessRow, error)
}

func (m *mockAuditRepository) LessonLinkStats(ctx context.Context, courseID uint) ([]course.LessonLinkStat, error) {
	if m.LessonLinkStatsFunc != nil {
		return m.LessonLinkStatsFunc(ctx, courseID)
	}
	return nil, nil
}

func (m *mockAuditRepository) RosterEntries(ctx context.Context, courseID uint) ([]course.RosterEntry, error) {
	if m.RosterEntriesFunc != nil {
		return m.RosterEntriesFunc(ctx, courseID)
	}
	return nil, nil
}

func (m *mockAuditRepository) DanglingLessonLinks(ctx context.Context, courseID uint, organizationID string) ([]course.DanglingLink, error) {
	if m.DanglingLessonLinksFunc != nil {
		return m.DanglingLessonLinksFunc(ctx, courseID, organizationID)
	}
	return nil, nil
}

func (m *mockAuditRepository) DanglingRosterLinks(ctx context.Context, courseID uint, organizationID string) ([]course.DanglingLink, error) {
	if m.DanglingRosterLinksFunc != nil {
		return m.DanglingRosterLinksFunc(ctx, courseID, organizationID)
	}
	return nil, nil
}

func (m *mockAuditRepository) LessonTechniquesOutsideRoster(ctx context.Context, courseID uint) ([]uint, error) {
	if m.LessonTechniquesOutsideRosterFunc != nil {
		return m.LessonTechniquesOutsideRosterFunc(ctx, courseID)
	}
	return nil, nil
}

func (m *mockAuditRepository) ParentlessRows(ctx context.Context) ([]course.ParentlessRow, error) {
	if m.ParentlessRowsFunc != nil {
		return m.ParentlessRowsFunc(ctx)
	}
	return nil, nil
}

// mockTxRunner runs fn directly and counts calls.
type mockTxRunner struct {
	calls int
}

func (m *mockTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockLocker struct {
	LockFunc func(ctx context.Context, key string) (lock.Release, error)
	txScoped bool
	keys     []string
	released int
}

func (m *mockLocker) Lock(ctx context.Context, key string) (lock.Release, error) {
	m.keys = append(m.keys, key)
	if m.LockFunc != nil {
		return m.LockFunc(ctx, key)
	}
	return func() { m.released++ }, nil
}

func (m *mockLocker) TransactionScoped() bool {
	return m.txScoped
}

func storedCourse(t testing.TB, id uint, sid, org, name string) *course.Course {
	c, err := course.ReconstructCourse(id, sid, org, "", course.Details{
		Name:            name,
		Level:           shared.LevelBeginner,
		IsActive:        true,
		ExpectedLessons: 2,
	}, time.Now(), time.Now())
	require.NoError(t, err)
	return c
}

func storedTechnique(t testing.TB, id uint, org, name string) *technique.Technique {
	tech, err := technique.ReconstructTechnique(id, "tech_test", org, name, technique.NormalizeSlug(name),
		string(technique.InferCategory(name)), string(shared.LevelBeginner), "", time.Now(), time.Now())
	require.NoError(t, err)
	return tech
}
