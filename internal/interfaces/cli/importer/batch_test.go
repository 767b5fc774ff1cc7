package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/infrastructure/config"
	"curriculum/internal/infrastructure/testutil"
	"curriculum/internal/interfaces/bootstrap"
	sharedConfig "curriculum/internal/shared/config"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

const boxingJSON = `{"course": {"name": "Boxing"}, "lessonPlans": [
	{"lessonNumber": 1, "techniques": ["Jab", "Cross"]},
	{"lessonNumber": 2, "techniques": ["Hook"]}
]}`

const boxingYAML = `course:
  name: boxing
lessonPlans:
  - lessonNumber: 1
    techniques: [Jab]
`

const judoYAML = `course:
  name: Judo
lessonPlans:
  - lessonNumber: 1
    techniques: [O Goshi]
`

func newEngine(t *testing.T) *bootstrap.Container {
	t.Helper()
	cfg := &config.Config{
		Import: sharedConfig.ImportConfig{
			LockBackend:              sharedConfig.LockBackendMemory,
			LockTimeout:              10 * time.Second,
			TransactionTimeout:       10 * time.Second,
			CreateMissingTechniques:  true,
			DefaultLessonMinutes:     60,
			DefaultAllocationMinutes: 15,
		},
	}
	c, err := bootstrap.New(testutil.NewSQLiteDB(t), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeFiles(t *testing.T, files map[string]string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		paths[name] = p
	}
	return paths
}

func newTestBatch(c *bootstrap.Container) *Batch {
	return NewBatch(c.UseCases.Import, c.UseCases.Preview, logger.NewNop())
}

func TestBatch_SameCourseSerializes(t *testing.T) {
	c := newEngine(t)
	p := writeFiles(t, map[string]string{"a.json": boxingJSON, "b.yaml": boxingYAML, "judo.yml": judoYAML})

	results := newTestBatch(c).Run(context.Background(), []string{p["a.json"], p["b.yaml"], p["judo.yml"]}, BatchOptions{
		OrganizationID: "org_1",
		Workers:        3,
	})
	require.Len(t, results, 3)
	assert.Equal(t, p["judo.yml"], results[2].Path)
	assert.False(t, results[2].Failed(), results[2].Error)

	boxing := results[:2]
	assert.Equal(t, 1, countFailed(boxing), "the second boxing file finds the first")
	for _, r := range boxing {
		if r.Failed() {
			assert.Equal(t, errors.OutcomeNothingHappened, r.Outcome)
			require.NotNil(t, r.Result)
			assert.Equal(t, dto.ModeAlreadyExists, r.Result.Mode)
		} else {
			assert.Equal(t, errors.OutcomeCommitted, r.Outcome)
		}
	}

	list, err := c.Repos.Courses.ListByOrganization(context.Background(), "org_1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBatch_ReplaceKeepsOneCourse(t *testing.T) {
	c := newEngine(t)
	p := writeFiles(t, map[string]string{"a.json": boxingJSON, "b.yaml": boxingYAML})

	results := newTestBatch(c).Run(context.Background(), []string{p["a.json"], p["b.yaml"]}, BatchOptions{
		OrganizationID: "org_1",
		Replace:        true,
		Workers:        2,
	})
	assert.Zero(t, countFailed(results))
	assert.Equal(t, results[0].Result.CourseID, results[1].Result.CourseID)

	list, err := c.Repos.Courses.ListByOrganization(context.Background(), "org_1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBatch_DryRunWritesNothing(t *testing.T) {
	c := newEngine(t)
	p := writeFiles(t, map[string]string{"a.json": boxingJSON})

	results := newTestBatch(c).Run(context.Background(), []string{p["a.json"]}, BatchOptions{
		OrganizationID: "org_1",
		DryRun:         true,
	})
	require.Len(t, results, 1)
	require.False(t, results[0].Failed(), results[0].Error)
	assert.True(t, results[0].Result.DryRun)
	assert.Equal(t, 2, results[0].Result.LessonPlansCreated)

	list, err := c.Repos.Courses.ListByOrganization(context.Background(), "org_1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBatch_BadFilesFailAlone(t *testing.T) {
	c := newEngine(t)
	p := writeFiles(t, map[string]string{"good.yaml": judoYAML, "broken.json": `{"course": `, "big.json": boxingJSON})
	missing := filepath.Join(t.TempDir(), "missing.json")

	results := newTestBatch(c).Run(context.Background(), []string{p["broken.json"], missing, p["good.yaml"], p["big.json"]}, BatchOptions{
		OrganizationID: "org_1",
		Workers:        2,
		MaxBytes:       int64(len(judoYAML)),
	})
	require.Len(t, results, 4)

	assert.True(t, results[0].Failed())
	assert.Equal(t, errors.OutcomeNothingHappened, results[0].Outcome)
	assert.True(t, results[1].Failed())
	assert.Contains(t, results[1].Error, "cannot open document")
	assert.False(t, results[2].Failed(), results[2].Error)
	assert.True(t, results[3].Failed())
	assert.Contains(t, results[3].Error, "document too large")
}

type panickingImporter struct{}

func (panickingImporter) Execute(ctx context.Context, cmd dto.ImportCourseCommand) (*dto.ImportResult, error) {
	panic("boom")
}

func TestBatch_RecoversPanickingImport(t *testing.T) {
	p := writeFiles(t, map[string]string{"a.json": boxingJSON})

	results := NewBatch(panickingImporter{}, nil, logger.NewNop()).Run(context.Background(), []string{p["a.json"]}, BatchOptions{OrganizationID: "org_1"})
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Error, "boom")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := writeSummary(&buf, []FileResult{
		{Path: "a.json", Outcome: errors.OutcomeCommitted, Result: &dto.ImportResult{Mode: dto.ModeCreate, CourseID: "course_1", LessonPlansCreated: 2}},
		{Path: "b.json", Outcome: errors.OutcomeNothingHappened, Error: "malformed_document: bad"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a.json")
	assert.Contains(t, out, "course_1")
	assert.Contains(t, out, "malformed_document: bad")
}
