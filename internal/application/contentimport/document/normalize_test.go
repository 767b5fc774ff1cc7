package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculum/internal/domain/shared"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/services/markdown"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(markdown.NewMarkdownService(), Options{DefaultLessonMinutes: 60})
}

func TestNormalize_WrapperScenario(t *testing.T) {
	raw := `{"course": {"name": "Krav Maga - White Belt"},
		"lessonPlans": [
			{"lessonNumber": 1, "techniques": ["Jab"]},
			{"lessonNumber": 2, "techniques": ["Jab", "Cross"]}
		]}`

	doc, err := newTestNormalizer().Normalize([]byte(raw), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "Krav Maga - White Belt", doc.Course.Name)
	assert.True(t, doc.Course.IsActive)
	assert.Equal(t, shared.LevelBeginner, doc.Course.Level)
	assert.Equal(t, 2, doc.Course.ExpectedLessons)
	assert.Equal(t, 60, doc.Course.LessonDurationMinutes)

	require.Len(t, doc.LessonPlans, 2)
	assert.Equal(t, "Krav Maga - White Belt - Lesson 1", doc.LessonPlans[0].Title)
	assert.Equal(t, 60, doc.LessonPlans[0].DurationMinutes)
	assert.Len(t, doc.LessonPlans[0].Techniques, 1)
	assert.Len(t, doc.LessonPlans[1].Techniques, 2)
	assert.Equal(t, []string{"jab", "cross"}, doc.Slugs())
	assert.Empty(t, doc.Conflicts)
}

func TestNormalize_BothShapesNormalizeIdentically(t *testing.T) {
	wrapped := `{"course": {
		"name": "Muay Thai Basics",
		"lesson_plans": [
			{"lesson_number": 1, "title": "Stance", "techniques": [{"name": "Jab", "category": "PUNCH"}]},
			{"lesson_number": 2, "title": "Combos", "techniques": ["Jab", {"name": "Cross", "category": "PUNCH"}]}
		]}}`

	flat := `{
		"name": "Muay Thai Basics",
		"techniques": [
			{"id": "t1", "name": "Jab", "category": "PUNCH"},
			{"id": "t2", "name": "Cross", "category": "PUNCH"}
		],
		"lessonPlans": [
			{"lessonNumber": 1, "title": "Stance", "techniques": ["t1"]},
			{"lessonNumber": 2, "title": "Combos", "techniques": [{"id": "t1"}, "t2"]}
		]}`

	n := newTestNormalizer()
	a, err := n.Normalize([]byte(wrapped), FormatJSON)
	require.NoError(t, err)
	b, err := n.Normalize([]byte(flat), FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "PUNCH", a.LessonPlans[1].Techniques[0].Category)
}

func TestNormalize_YAMLMatchesJSON(t *testing.T) {
	yamlDoc := `
course:
  name: Krav Maga - White Belt
  difficulty: Intermediário
  equipment: [gloves, pads]
lessonPlans:
  - lessonNumber: 1
    duration: 45
    techniques: [Jab]
`
	jsonDoc := `{"course": {"name": "Krav Maga - White Belt", "difficulty": "Intermediário", "equipment": ["gloves", "pads"]},
		"lessonPlans": [{"lessonNumber": 1, "duration": 45, "techniques": ["Jab"]}]}`

	n := newTestNormalizer()
	fromYAML, err := n.Normalize([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	fromJSON, err := n.Normalize([]byte(jsonDoc), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, shared.LevelIntermediate, fromYAML.Course.Level)
	assert.Equal(t, 45, fromYAML.LessonPlans[0].DurationMinutes)
	assert.Equal(t, shared.LevelIntermediate, fromYAML.LessonPlans[0].Level)
}

func TestNormalize_SlugVariantsCollapse(t *testing.T) {
	raw := `{"name": "Kickboxing", "lessons": [
		{"techniques": ["Front Kick", "front kick ", "FRONT-KICK!"]},
		{"techniques": ["Front  Kick"]}
	]}`

	doc, err := newTestNormalizer().Normalize([]byte(raw), FormatJSON)
	require.NoError(t, err)

	require.Len(t, doc.Techniques, 1)
	assert.Equal(t, "Front Kick", doc.Techniques[0].Name)
	assert.Equal(t, "front-kick", doc.Techniques[0].Slug)
	assert.Len(t, doc.LessonPlans[0].Techniques, 1)
	assert.Len(t, doc.LessonPlans[1].Techniques, 1)
}

func TestNormalize_LessonNumbersDefaultToPosition(t *testing.T) {
	raw := `{"name": "Boxing", "lessons": [{"title": "A"}, {"title": "B", "week": 2}]}`

	doc, err := newTestNormalizer().Normalize([]byte(raw), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.LessonPlans[0].LessonNumber)
	assert.Equal(t, 2, doc.LessonPlans[1].LessonNumber)
	assert.Equal(t, 1, doc.LessonPlans[0].WeekNumber)
	assert.Equal(t, 2, doc.LessonPlans[1].WeekNumber)
	assert.Equal(t, 2, doc.Course.DurationWeeks)
}

func TestNormalize_MetadataConflictLastWriterWins(t *testing.T) {
	raw := `{"name": "Boxing",
		"techniques": [{"name": "Jab", "category": "PUNCH", "difficulty": "beginner"}],
		"lessons": [{"techniques": [{"name": "jab", "category": "KICK", "difficulty": "Iniciante"}]}]}`

	doc, err := newTestNormalizer().Normalize([]byte(raw), FormatJSON)
	require.NoError(t, err)

	require.Len(t, doc.Conflicts, 1)
	assert.Equal(t, Conflict{Slug: "jab", Field: "category", Previous: "PUNCH", Value: "KICK"}, doc.Conflicts[0])
	assert.Equal(t, "KICK", doc.Techniques[0].Category)
	assert.Equal(t, "Jab", doc.Techniques[0].Name)
	assert.Equal(t, "beginner", doc.Techniques[0].Difficulty)
	assert.Equal(t, "KICK", doc.LessonPlans[0].Techniques[0].Category)
}

func TestNormalize_ScheduleExpansion(t *testing.T) {
	raw := `{"courseId": "krav-white", "name": "Krav Maga", "durationTotalWeeks": 2,
		"techniques": [{"id": "t1", "name": "Jab"}, {"id": "t2", "name": "Cross"}],
		"schedule": {"weeks": 2, "lessonsPerWeek": [
			{"week": 1, "lessons": 2, "focus": [{"id": "t1", "name": "Jab"}, "cardio"]},
			{"week": 2, "lessons": 1, "focus": [{"id": "t2"}, "t1"]}
		]},
		"warmup": {"description": "Jog", "duration": 10},
		"generalNotes": ["Bring water"]}`

	doc, err := newTestNormalizer().Normalize([]byte(raw), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "krav-white", doc.Course.ID)
	require.Len(t, doc.LessonPlans, 3)
	for i, lp := range doc.LessonPlans {
		assert.Equal(t, i+1, lp.LessonNumber)
	}
	assert.Equal(t, []int{1, 1, 2}, []int{doc.LessonPlans[0].WeekNumber, doc.LessonPlans[1].WeekNumber, doc.LessonPlans[2].WeekNumber})
	assert.Equal(t, "Krav Maga - Week 1 - Lesson 2", doc.LessonPlans[1].Title)
	assert.Equal(t, []string{"Practice: Jab", "cardio"}, doc.LessonPlans[0].Objectives)
	require.Len(t, doc.LessonPlans[2].Techniques, 2)
	assert.Equal(t, "cross", doc.LessonPlans[2].Techniques[0].Slug)
	assert.Equal(t, "jab", doc.LessonPlans[2].Techniques[1].Slug)

	assert.Equal(t, 3, doc.Course.ExpectedLessons)
	assert.Equal(t, 2, doc.Course.DurationWeeks)
	require.NotNil(t, doc.Course.Metadata)
	assert.Contains(t, doc.Course.Metadata, "warmup")
	assert.Equal(t, []any{"Bring water"}, doc.Course.Metadata["general_notes"])
}

func TestNormalize_SanitizesFreeText(t *testing.T) {
	raw := `{"name": "<b>Boxing</b>", "description": "Basics<script>x()</script>",
		"lessons": [{"title": "Guard &amp; footwork", "sections": [{"type": "Warmup", "content": "<p>Skipping</p>", "items": [{"name": "Rope"}, "Shadow"]}]}]}`

	doc, err := newTestNormalizer().Normalize([]byte(raw), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "Boxing", doc.Course.Name)
	assert.Equal(t, "Basics", doc.Course.Description)
	assert.Equal(t, "Guard & footwork", doc.LessonPlans[0].Title)
	require.Len(t, doc.LessonPlans[0].Sections, 1)
	sec := doc.LessonPlans[0].Sections[0]
	assert.Equal(t, "warmup", sec.Kind)
	assert.Equal(t, "Skipping", sec.Content)
	assert.Equal(t, []string{"Rope", "Shadow"}, sec.Items)
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"invalid json", `{"name": `},
		{"root array", `[1, 2]`},
		{"missing name", `{"lessons": [{"title": "A"}]}`},
		{"missing lessons", `{"name": "Boxing"}`},
		{"empty lessons", `{"name": "Boxing", "lessons": []}`},
		{"lesson not object", `{"name": "Boxing", "lessons": ["A"]}`},
		{"zero lesson number", `{"name": "Boxing", "lessons": [{"lessonNumber": 0}]}`},
		{"fractional lesson number", `{"name": "Boxing", "lessons": [{"lessonNumber": 1.5}]}`},
		{"unknown catalog id", `{"name": "Boxing", "lessons": [{"techniques": [{"id": "t9"}]}]}`},
		{"technique without letters", `{"name": "Boxing", "lessons": [{"techniques": ["--"]}]}`},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := n.Normalize([]byte(tt.raw), FormatAuto)
			assert.Nil(t, doc)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedDocument), err.Error())
			assert.Equal(t, errors.OutcomeNothingHappened, errors.ClassifyOutcome(err))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("application/x-yaml; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatFromPath("courses/white-belt.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("white-belt.JSON"))
	assert.Equal(t, FormatAuto, FormatFromPath("white-belt"))
}
