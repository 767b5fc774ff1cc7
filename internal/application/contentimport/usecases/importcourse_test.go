package usecases

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/domain/course"
	"curriculum/internal/infrastructure/lock"
	"curriculum/internal/shared/config"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
	"curriculum/internal/shared/services/markdown"
)

const kravMaga = `{"course": {"name": "Krav Maga - White Belt"},
	"lessonPlans": [
		{"lessonNumber": 1, "techniques": ["Jab"]},
		{"lessonNumber": 2, "techniques": ["Jab", "Cross"]}
	]}`

type importFixture struct {
	courses *mockCourseRepository
	graph   *mockGraphWriter
	techs   *mockTechniqueRepository
	tx      *mockTxRunner
	locker  *mockLocker
	cfg     config.ImportConfig
}

func newImportFixture() *importFixture {
	return &importFixture{
		courses: &mockCourseRepository{},
		graph:   &mockGraphWriter{},
		techs:   &mockTechniqueRepository{},
		tx:      &mockTxRunner{},
		locker:  &mockLocker{},
		cfg: config.ImportConfig{
			LockTimeout:              time.Second,
			TransactionTimeout:       time.Second,
			CreateMissingTechniques:  true,
			DefaultLessonMinutes:     60,
			DefaultAllocationMinutes: 15,
		},
	}
}

func (f *importFixture) useCase() *ImportCourseUseCase {
	log := logger.NewNop()
	normalizer := document.NewNormalizer(markdown.NewMarkdownService(), document.Options{DefaultLessonMinutes: f.cfg.DefaultLessonMinutes})
	return NewImportCourseUseCase(
		normalizer,
		f.courses,
		NewTechniqueResolver(f.techs, log),
		NewGraphBuilder(f.cfg.DefaultAllocationMinutes),
		NewSwapExecutor(f.courses, f.graph, log),
		nil,
		f.tx,
		f.locker,
		f.cfg,
		log,
	)
}

func importCmd(raw string, replace bool) dto.ImportCourseCommand {
	return dto.ImportCourseCommand{
		OrganizationID:  "org_1",
		Raw:             []byte(raw),
		Format:          document.FormatJSON,
		ReplaceExisting: replace,
	}
}

func TestImportCourse_Create(t *testing.T) {
	f := newImportFixture()
	var plans []*course.LessonPlan
	var roster []course.CourseTechnique
	f.graph.InsertLessonPlansFunc = func(ctx context.Context, courseID uint, p []*course.LessonPlan) error {
		plans = p
		return nil
	}
	f.graph.InsertRosterFunc = func(ctx context.Context, courseID uint, r []course.CourseTechnique) error {
		roster = r
		return nil
	}

	result, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, false))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, errors.OutcomeCommitted, result.Outcome)
	assert.Equal(t, dto.ModeCreate, result.Mode)
	assert.Equal(t, "Krav Maga - White Belt", result.CourseName)
	assert.NotEmpty(t, result.CourseID)
	assert.Equal(t, 2, result.LessonPlansCreated)
	assert.Equal(t, 2, result.TechniquesCreated)
	assert.Equal(t, 2, result.CourseTechniquesCreated)
	assert.Equal(t, 3, result.LessonTechniquesCreated)
	assert.Equal(t, 5, result.AssociationsCreated)
	assert.ElementsMatch(t, []string{"Jab", "Cross"}, result.CreatedTechniques)

	assert.Len(t, plans, 2)
	assert.Len(t, roster, 2)
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{"course-import:org_1:krav maga - white belt"}, f.locker.keys)
	assert.Equal(t, 1, f.locker.released)
}

func TestImportCourse_AlreadyExistsWritesNothing(t *testing.T) {
	f := newImportFixture()
	existing := storedCourse(t, 9, "course_existing", "org_1", "Krav Maga - White Belt")
	f.courses.FindActiveByNaturalKeyFunc = func(ctx context.Context, org, key string) (*course.Course, error) {
		assert.Equal(t, "krav maga - white belt", key)
		return existing, nil
	}
	f.courses.CreateFunc = func(ctx context.Context, c *course.Course) error {
		t.Fatal("create must not run")
		return nil
	}

	result, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, false))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAlreadyExists))

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, dto.ModeAlreadyExists, result.Mode)
	assert.Equal(t, "course_existing", result.CourseID)
	assert.Equal(t, errors.OutcomeNothingHappened, result.Outcome)
	assert.Zero(t, f.tx.calls)
	assert.Empty(t, f.locker.keys)
}

func TestImportCourse_CreatedWhileWaitingOnLock(t *testing.T) {
	f := newImportFixture()
	calls := 0
	existing := storedCourse(t, 9, "course_raced", "org_1", "Krav Maga - White Belt")
	f.courses.FindActiveByNaturalKeyFunc = func(ctx context.Context, org, key string) (*course.Course, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return existing, nil
	}

	result, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, false))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAlreadyExists))
	assert.Equal(t, dto.ModeAlreadyExists, result.Mode)
	assert.Equal(t, "course_raced", result.CourseID)
	assert.Equal(t, 2, calls)
}

func TestImportCourse_ReplaceSwapsChildren(t *testing.T) {
	f := newImportFixture()
	existing := storedCourse(t, 9, "course_existing", "org_1", "Krav Maga - White Belt")
	f.courses.FindActiveByNaturalKeyFunc = func(ctx context.Context, org, key string) (*course.Course, error) {
		return existing, nil
	}
	f.graph.DeleteChildrenFunc = func(ctx context.Context, courseID uint) (course.ChildCounts, error) {
		assert.Equal(t, uint(9), courseID)
		return course.ChildCounts{LessonPlans: 10, RosterLinks: 4}, nil
	}
	updated := false
	f.courses.UpdateFunc = func(ctx context.Context, c *course.Course) error {
		updated = true
		return nil
	}

	result, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, true))
	require.NoError(t, err)

	assert.True(t, updated)
	assert.Equal(t, dto.ModeReplace, result.Mode)
	assert.Equal(t, "course_existing", result.CourseID)
	assert.Equal(t, int64(10), result.LessonPlansRemoved)
	assert.Equal(t, int64(4), result.RosterLinksRemoved)
	assert.Equal(t, 2, result.LessonPlansCreated)
}

func TestImportCourse_DocumentErrorsChangeNothing(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		errType errors.ErrorType
	}{
		{"malformed", `{"name": "Boxing"}`, errors.ErrorTypeMalformedDocument},
		{"duplicate lesson numbers", `{"name": "Boxing", "lessons": [{"lessonNumber": 1}, {"lessonNumber": 1}]}`, errors.ErrorTypeDuplicateLessonNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			result, err := f.useCase().Execute(context.Background(), importCmd(tt.raw, false))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), err.Error())
			assert.Equal(t, errors.OutcomeNothingHappened, result.Outcome)
			assert.Zero(t, f.tx.calls)
		})
	}
}

func TestImportCourse_MissingOrganization(t *testing.T) {
	cmd := importCmd(kravMaga, false)
	cmd.OrganizationID = ""

	_, err := newImportFixture().useCase().Execute(context.Background(), cmd)
	assert.True(t, errors.IsValidationError(err))
}

func TestImportCourse_StoreRejectionIsRolledBack(t *testing.T) {
	f := newImportFixture()
	f.graph.InsertRosterFunc = func(ctx context.Context, courseID uint, r []course.CourseTechnique) error {
		return stderrors.New("UNIQUE constraint failed: course_techniques.course_id, course_techniques.technique_id")
	}

	result, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, false))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorageConstraintViolation), err.Error())
	assert.Contains(t, errors.GetAppError(err).Details, "UNIQUE constraint failed")
	assert.Equal(t, errors.OutcomeRolledBack, result.Outcome)
	assert.True(t, errors.Retryable(err))
	assert.Equal(t, 1, f.locker.released)
}

func TestImportCourse_LockTimeout(t *testing.T) {
	f := newImportFixture()
	f.cfg.LockTimeout = 10 * time.Millisecond
	f.locker.LockFunc = func(ctx context.Context, key string) (lock.Release, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	result, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, false))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeImportTimeout), err.Error())
	assert.Equal(t, errors.OutcomeRolledBack, result.Outcome)
	assert.Zero(t, f.tx.calls)
}

func TestImportCourse_TransactionScopedLockTakenInsideTransaction(t *testing.T) {
	f := newImportFixture()
	f.locker.txScoped = true
	f.locker.LockFunc = func(ctx context.Context, key string) (lock.Release, error) {
		assert.Equal(t, 1, f.tx.calls, "lock must be taken inside the transaction")
		return func() {}, nil
	}

	_, err := f.useCase().Execute(context.Background(), importCmd(kravMaga, false))
	require.NoError(t, err)
	assert.Len(t, f.locker.keys, 1)
}

func TestImportCourse_ForeignCourseID(t *testing.T) {
	f := newImportFixture()
	f.courses.GetBySIDFunc = func(ctx context.Context, sid string) (*course.Course, error) {
		return storedCourse(t, 3, sid, "org_2", "Other"), nil
	}

	raw := `{"id": "course_abc", "name": "Boxing", "lessons": [{"title": "A"}]}`
	result, err := f.useCase().Execute(context.Background(), importCmd(raw, true))
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
	assert.Equal(t, errors.OutcomeNothingHappened, result.Outcome)
}

func TestImportCourse_ExplicitIDLocksStoredCourse(t *testing.T) {
	f := newImportFixture()
	f.courses.GetBySIDFunc = func(ctx context.Context, sid string) (*course.Course, error) {
		return storedCourse(t, 4, sid, "org_1", "Boxing"), nil
	}

	raw := `{"id": "course_abc", "name": "Boxing Fundamentals", "lessons": [{"title": "A"}]}`
	result, err := f.useCase().Execute(context.Background(), importCmd(raw, true))
	require.NoError(t, err)

	assert.Equal(t, dto.ModeReplace, result.Mode)
	assert.Equal(t, []string{courseLockKey("org_1", course.NaturalKey("Boxing"))}, f.locker.keys,
		"a rename through an explicit id must lock the stored course")
}

func TestLockKey(t *testing.T) {
	doc := &document.Canonical{Course: document.CourseSpec{Name: "Boxing Fundamentals"}}
	assert.Equal(t, "course-import:org_1:"+course.NaturalKey("Boxing Fundamentals"), lockKey("org_1", doc, nil))

	stored := storedCourse(t, 4, "course_abc", "org_1", "Boxing")
	assert.Equal(t, "course-import:org_1:"+course.NaturalKey("Boxing"), lockKey("org_1", doc, stored))
}

func TestImportCourse_SelfCheckAttachesAudit(t *testing.T) {
	f := newImportFixture()
	f.cfg.SelfCheck = true

	auditor := &stubAuditor{report: &dto.AuditReport{Consistent: true}}
	uc := f.useCase()
	uc.auditor = auditor

	result, err := uc.Execute(context.Background(), importCmd(kravMaga, false))
	require.NoError(t, err)
	require.NotNil(t, result.Audit)
	assert.True(t, result.Audit.Consistent)
	assert.Equal(t, result.CourseID, auditor.courseID)

	auditor.err = stderrors.New("database is locked")
	f2 := newImportFixture()
	f2.cfg.SelfCheck = true
	uc2 := f2.useCase()
	uc2.auditor = auditor
	result, err = uc2.Execute(context.Background(), importCmd(kravMaga, false))
	require.NoError(t, err)
	assert.Nil(t, result.Audit)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "self_check_failed", result.Warnings[0].Code)
}

type stubAuditor struct {
	report   *dto.AuditReport
	err      error
	courseID string
}

func (s *stubAuditor) Execute(ctx context.Context, courseID string) (*dto.AuditReport, error) {
	s.courseID = courseID
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubAuditor) ExecuteOrganization(ctx context.Context, organizationID string) (*dto.OrganizationAuditReport, error) {
	return nil, nil
}

func (s *stubAuditor) ExecuteStore(ctx context.Context) (*dto.StoreAuditReport, error) {
	return nil, nil
}
