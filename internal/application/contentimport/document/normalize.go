package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/shared"
	"curriculum/internal/domain/technique"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/services/markdown"
	"curriculum/internal/shared/utils"
)

// Format is the serialization of an uploaded document.
type Format string

const (
	// FormatAuto sniffs the first non-blank byte: '{' or '[' means JSON.
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or a content type.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "json", "application/json", "text/json":
		return FormatJSON, nil
	case "yaml", "yml", "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	}
	return FormatAuto, errors.NewBadRequestError("unsupported document format", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return FormatAuto
}

// Options holds defaults applied to fields a document leaves out.
type Options struct {
	DefaultLessonMinutes int
}

// Normalizer converts decoded documents into Canonical form.
type Normalizer struct {
	text markdown.MarkdownService
	opts Options
}

func NewNormalizer(text markdown.MarkdownService, opts Options) *Normalizer {
	if opts.DefaultLessonMinutes <= 0 {
		opts.DefaultLessonMinutes = 60
	}
	return &Normalizer{text: text, opts: opts}
}

// Normalize decodes raw and normalizes it. Every failure is a
// MalformedDocument error.
func (n *Normalizer) Normalize(raw []byte, format Format) (*Canonical, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.NewMalformedDocumentError("document is empty")
	}
	if format == FormatAuto {
		format = FormatYAML
		if trimmed[0] == '{' || trimmed[0] == '[' {
			format = FormatJSON
		}
	}

	var decoded any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(trimmed, &decoded)
	case FormatYAML:
		err = yaml.Unmarshal(trimmed, &decoded)
	default:
		return nil, errors.NewBadRequestError("unsupported document format", string(format))
	}
	if err != nil {
		return nil, errors.NewMalformedDocumentError("document could not be decoded", err.Error())
	}

	root, ok := asMap(decoded)
	if !ok {
		return nil, errors.NewMalformedDocumentError("document root must be an object")
	}
	return n.NormalizeMap(root)
}

// NormalizeMap normalizes an already decoded document. The course may sit
// under a "course" key or at the top level; lessons and the technique catalog
// are looked up on the course object first and then on the root.
func (n *Normalizer) NormalizeMap(root map[string]any) (*Canonical, error) {
	top := newObject(root)
	courseObj := top
	if wrapped, ok := top.child("course", "courseData"); ok {
		courseObj = wrapped
	}
	scope := scoped{courseObj, top}

	spec, err := n.courseSpec(scope)
	if err != nil {
		return nil, err
	}

	st := &state{n: n, refs: newRefSet(), catalogByID: make(map[string]string)}
	if err := st.readCatalog(scope); err != nil {
		return nil, err
	}

	var lessons []LessonSpec
	if list, ok := scope.list("lessonPlans", "lessons", "plans"); ok {
		lessons, err = st.readLessons(list, spec)
	} else if schedule, ok := scope.child("schedule"); ok {
		lessons, err = st.expandSchedule(schedule, &spec)
	} else {
		return nil, errors.NewMalformedDocumentError("at least one lesson plan is required")
	}
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, errors.NewMalformedDocumentError("at least one lesson plan is required")
	}

	// Lessons carry the merged reference so both catalog and inline shapes
	// end up with the same data.
	maxWeek := 0
	for i := range lessons {
		for j, ref := range lessons[i].Techniques {
			lessons[i].Techniques[j] = st.refs.get(ref.Slug)
		}
		maxWeek = max(maxWeek, lessons[i].WeekNumber)
	}
	if spec.ExpectedLessons == 0 {
		spec.ExpectedLessons = len(lessons)
	}
	if spec.DurationWeeks == 0 {
		spec.DurationWeeks = maxWeek
	}

	doc := &Canonical{
		Course:      spec,
		LessonPlans: lessons,
		Techniques:  st.refs.refs,
		Conflicts:   st.refs.conflicts,
	}

	messages, err := utils.ValidationMessages(doc)
	if err != nil {
		return nil, fmt.Errorf("validate canonical document: %w", err)
	}
	if len(messages) > 0 {
		return nil, errors.NewMalformedDocumentError("document failed validation", strings.Join(messages, "; "))
	}
	return doc, nil
}

// scoped reads from the course object and falls back to the document root.
type scoped [2]object

func (s scoped) get(aliases ...string) (any, bool) {
	for _, o := range s {
		if v, ok := o.get(aliases...); ok {
			return v, ok
		}
	}
	return nil, false
}

func (s scoped) list(aliases ...string) ([]any, bool) {
	for _, o := range s {
		if l, ok := o.list(aliases...); ok {
			return l, ok
		}
	}
	return nil, false
}

func (s scoped) child(aliases ...string) (object, bool) {
	for _, o := range s {
		if c, ok := o.child(aliases...); ok {
			return c, ok
		}
	}
	return object{}, false
}

// extendedMetadata lists course-level keys kept verbatim in Course metadata.
var extendedMetadata = []struct{ key, alias string }{
	{"warmup", "warmup"},
	{"cooldown", "cooldown"},
	{"simulations", "simulations"},
	{"activities", "activities"},
	{"physical_preparation", "physicalPreparation"},
	{"support_resources", "supportResources"},
	{"general_notes", "generalNotes"},
	{"gamification", "gamification"},
	{"final_event", "finalEvent"},
	{"source", "source"},
}

func (n *Normalizer) courseSpec(scope scoped) (CourseSpec, error) {
	c := scope[0]
	spec := CourseSpec{
		ID:           c.str("id", "courseId"),
		Name:         n.text.PlainText(c.str("name", "title")),
		Description:  n.text.PlainText(c.str("description", "summary")),
		Level:        shared.ParseLevel(c.str("level", "difficulty")),
		SkillDomain:  c.str("skillDomain", "martialArt", "domain", "discipline"),
		IsActive:     c.boolean(true, "isActive", "active"),
		IsBaseCourse: c.boolean(false, "isBaseCourse", "baseCourse", "isBase"),
		Objectives:   c.stringList("objectives", "goals"),
		Equipment:    c.stringList("equipment"),
	}
	if spec.Name == "" {
		return spec, errors.NewMalformedDocumentError("course name is required")
	}

	var err error
	if spec.DurationWeeks, _, err = c.integer("durationWeeks", "durationTotalWeeks"); err != nil {
		return spec, errors.NewMalformedDocumentError("invalid course field", err.Error())
	}
	if spec.ExpectedLessons, _, err = c.integer("totalLessons", "expectedLessons", "lessonCount"); err != nil {
		return spec, errors.NewMalformedDocumentError("invalid course field", err.Error())
	}
	var hasDuration bool
	if spec.LessonDurationMinutes, hasDuration, err = c.integer("lessonDurationMinutes", "lessonDuration"); err != nil {
		return spec, errors.NewMalformedDocumentError("invalid course field", err.Error())
	}
	if !hasDuration || spec.LessonDurationMinutes <= 0 {
		spec.LessonDurationMinutes = n.opts.DefaultLessonMinutes
	}

	metadata := make(map[string]any)
	if v, ok := c.get("metadata"); ok {
		if m, ok := asMap(v); ok {
			for k, val := range m {
				metadata[k] = plain(val)
			}
		}
	}
	for _, ext := range extendedMetadata {
		if v, ok := scope.get(ext.alias); ok {
			metadata[ext.key] = plain(v)
		}
	}
	if len(metadata) > 0 {
		spec.Metadata = metadata
	}
	return spec, nil
}

// state carries the technique set while lessons are read.
type state struct {
	n           *Normalizer
	refs        *refSet
	catalogByID map[string]string
}

func (st *state) readCatalog(scope scoped) error {
	list, ok := scope.list("techniques", "techniqueCatalog", "catalog")
	if !ok {
		return nil
	}
	for i, item := range list {
		ref, id, err := st.refFromValue(item)
		if err != nil {
			return errors.NewMalformedDocumentError(fmt.Sprintf("techniques[%d]: %s", i, err))
		}
		if id != "" {
			st.catalogByID[id] = ref.Slug
		}
		st.refs.add(ref)
	}
	return nil
}

// refFromValue builds a reference from a plain name or an object. It never
// consults the catalog; the returned id is the document-local catalog id.
func (st *state) refFromValue(v any) (TechniqueRef, string, error) {
	if m, ok := asMap(v); ok {
		o := newObject(m)
		id := o.str("id", "techniqueId")
		ref, err := st.newRef(o.str("name", "title", "technique"))
		if err != nil {
			return ref, id, err
		}
		ref.Category = o.str("category", "type")
		ref.Difficulty = o.str("difficulty", "level")
		ref.Description = st.n.text.PlainText(o.str("description"))
		return ref, id, nil
	}
	ref, err := st.newRef(asString(v))
	return ref, "", err
}

func (st *state) newRef(name string) (TechniqueRef, error) {
	name = strings.Join(strings.Fields(st.n.text.PlainText(name)), " ")
	if name == "" {
		return TechniqueRef{}, fmt.Errorf("technique name is required")
	}
	slug := technique.NormalizeSlug(name)
	if slug == "" {
		return TechniqueRef{}, fmt.Errorf("technique name %q has no letters or digits", name)
	}
	return TechniqueRef{Name: name, Slug: slug}, nil
}

// lessonRef resolves one lesson mention. A string or an object id that names
// a catalog entry refers to that entry; anything else is an inline technique.
func (st *state) lessonRef(v any) (TechniqueRef, error) {
	if _, isObject := asMap(v); !isObject {
		if slug, ok := st.catalogByID[strings.TrimSpace(asString(v))]; ok {
			return st.refs.get(slug), nil
		}
	}

	ref, id, err := st.refFromValue(v)
	if id != "" {
		if slug, ok := st.catalogByID[id]; ok {
			catalogRef := st.refs.get(slug)
			if err == nil {
				// Inline fields still take part in the merge under the catalog slug.
				ref.Name, ref.Slug = catalogRef.Name, catalogRef.Slug
				return ref, nil
			}
			return catalogRef, nil
		}
		if err != nil {
			return ref, fmt.Errorf("unknown technique id %q", id)
		}
	}
	return ref, err
}

func (st *state) readLessonRefs(lesson *LessonSpec, items []any, path string) error {
	seen := make(map[string]bool, len(items))
	for j, item := range items {
		ref, err := st.lessonRef(item)
		if err != nil {
			return errors.NewMalformedDocumentError(fmt.Sprintf("%s.techniques[%d]: %s", path, j, err))
		}
		st.refs.add(ref)
		// Repeated mentions inside one lesson collapse to the first.
		if seen[ref.Slug] {
			continue
		}
		seen[ref.Slug] = true
		lesson.Techniques = append(lesson.Techniques, ref)
	}
	return nil
}

func (st *state) readLessons(list []any, spec CourseSpec) ([]LessonSpec, error) {
	lessons := make([]LessonSpec, 0, len(list))
	for i, item := range list {
		path := fmt.Sprintf("lesson_plans[%d]", i)
		m, ok := asMap(item)
		if !ok {
			return nil, errors.NewMalformedDocumentError(path + " must be an object")
		}
		o := newObject(m)

		number, hasNumber, err := o.integer("lessonNumber", "number", "lesson", "order")
		if err != nil {
			return nil, errors.NewMalformedDocumentError(path+": invalid lesson number", err.Error())
		}
		if !hasNumber {
			number = i + 1
		} else if number < 1 {
			return nil, errors.NewMalformedDocumentError(fmt.Sprintf("%s: %s", path, course.ErrInvalidLessonNumber), fmt.Sprint(number))
		}
		week, hasWeek, err := o.integer("weekNumber", "week")
		if err != nil {
			return nil, errors.NewMalformedDocumentError(path+": invalid week number", err.Error())
		}
		if !hasWeek || week < 1 {
			week = 1
		}
		duration, hasDuration, err := o.integer("durationMinutes", "duration", "minutes")
		if err != nil {
			return nil, errors.NewMalformedDocumentError(path+": invalid duration", err.Error())
		}
		if !hasDuration || duration <= 0 {
			duration = spec.LessonDurationMinutes
		}

		lesson := LessonSpec{
			LessonNumber:    number,
			WeekNumber:      week,
			Title:           st.n.text.PlainText(o.str("title", "name")),
			Description:     st.n.text.PlainText(o.str("description", "summary")),
			DurationMinutes: duration,
			Level:           spec.Level,
			Sections:        st.readSections(o),
			Equipment:       o.stringList("equipment"),
			Objectives:      o.stringList("objectives", "goals"),
		}
		if lvl := o.str("level", "difficulty"); lvl != "" {
			lesson.Level = shared.ParseLevel(lvl)
		}
		if lesson.Title == "" {
			lesson.Title = fmt.Sprintf("%s - Lesson %d", spec.Name, number)
		}

		if refs, ok := o.list("techniques", "techniqueRefs", "focus"); ok {
			if err := st.readLessonRefs(&lesson, refs, path); err != nil {
				return nil, err
			}
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// expandSchedule turns schedule.lessonsPerWeek into sequentially numbered
// lessons. Focus objects are technique references; plain focus strings that
// are not catalog ids are activity tags and become objectives only.
func (st *state) expandSchedule(schedule object, spec *CourseSpec) ([]LessonSpec, error) {
	weeks, ok := schedule.list("lessonsPerWeek", "weeks")
	if !ok {
		return nil, errors.NewMalformedDocumentError("schedule.lessonsPerWeek is required when no lesson plans are given")
	}
	if total, ok, err := schedule.integer("weeks", "totalWeeks"); err == nil && ok && spec.DurationWeeks == 0 {
		spec.DurationWeeks = total
	}

	var lessons []LessonSpec
	number := 1
	for i, item := range weeks {
		path := fmt.Sprintf("schedule.lessonsPerWeek[%d]", i)
		m, ok := asMap(item)
		if !ok {
			return nil, errors.NewMalformedDocumentError(path + " must be an object")
		}
		o := newObject(m)
		week, hasWeek, err := o.integer("week", "weekNumber")
		if err != nil {
			return nil, errors.NewMalformedDocumentError(path+": invalid week", err.Error())
		}
		if !hasWeek || week < 1 {
			week = i + 1
		}
		count, hasCount, err := o.integer("lessons", "lessonCount", "count")
		if err != nil {
			return nil, errors.NewMalformedDocumentError(path+": invalid lesson count", err.Error())
		}
		if !hasCount {
			count = 1
		}

		focus, _ := o.list("focus", "techniques")
		var refItems []any
		var objectives []string
		for _, f := range focus {
			if s, isString := f.(string); isString {
				if _, isCatalog := st.catalogByID[strings.TrimSpace(s)]; !isCatalog {
					objectives = append(objectives, strings.TrimSpace(s))
					continue
				}
			}
			refItems = append(refItems, f)
		}

		for k := 1; k <= count; k++ {
			lesson := LessonSpec{
				LessonNumber:    number,
				WeekNumber:      week,
				Title:           fmt.Sprintf("%s - Week %d - Lesson %d", spec.Name, week, k),
				Description:     fmt.Sprintf("Week %d, lesson %d", week, k),
				DurationMinutes: spec.LessonDurationMinutes,
				Level:           spec.Level,
			}
			if err := st.readLessonRefs(&lesson, refItems, fmt.Sprintf("%s.lessons[%d]", path, k-1)); err != nil {
				return nil, err
			}
			lesson.Objectives = focusObjectives(lesson.Techniques, objectives)
			lessons = append(lessons, lesson)
			number++
		}
	}
	return lessons, nil
}

const maxFocusObjectives = 5

func focusObjectives(refs []TechniqueRef, tags []string) []string {
	out := make([]string, 0, len(refs)+len(tags))
	for _, r := range refs {
		out = append(out, "Practice: "+r.Name)
	}
	out = append(out, tags...)
	if len(out) > maxFocusObjectives {
		out = out[:maxFocusObjectives]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// namedBlocks are lesson keys read as sections when no explicit section list
// is given, in teaching order.
var namedBlocks = []string{"warmup", "core", "simulation", "cooldown"}

func (st *state) readSections(o object) []course.Section {
	if list, ok := o.list("sections", "blocks"); ok {
		sections := make([]course.Section, 0, len(list))
		for i, item := range list {
			if s, ok := st.section(item, fmt.Sprintf("section_%d", i+1)); ok {
				sections = append(sections, s)
			}
		}
		return sections
	}
	if m, ok := o.child("sections", "blocks"); ok {
		var sections []course.Section
		for _, k := range sortedKeys(m.values) {
			if s, ok := st.section(m.values[k], k); ok {
				sections = append(sections, s)
			}
		}
		return sections
	}

	var sections []course.Section
	for _, kind := range namedBlocks {
		if v, ok := o.get(kind, kind+"s"); ok {
			if s, ok := st.section(v, kind); ok {
				sections = append(sections, s)
			}
		}
	}
	return sections
}

func (st *state) section(v any, kind string) (course.Section, bool) {
	if s, ok := v.(string); ok {
		content := st.n.text.PlainText(s)
		return course.Section{Kind: kind, Content: content}, content != ""
	}
	m, ok := asMap(v)
	if !ok {
		return course.Section{}, false
	}
	o := newObject(m)
	sec := course.Section{
		Kind:    kind,
		Title:   st.n.text.PlainText(o.str("title", "name")),
		Content: st.n.text.PlainText(o.str("content", "description", "text")),
	}
	if k := o.str("kind", "type"); k != "" {
		sec.Kind = strings.ToLower(k)
	}
	if d, ok, err := o.integer("durationMinutes", "duration", "minutes"); err == nil && ok {
		sec.DurationMinutes = d
	}
	if items, ok := o.list("items", "exercises", "activities"); ok {
		for _, item := range items {
			name := asString(item)
			if im, ok := asMap(item); ok {
				name = newObject(im).str("name", "title", "description")
			}
			if name = strings.TrimSpace(st.n.text.PlainText(name)); name != "" {
				sec.Items = append(sec.Items, name)
			}
		}
	}
	return sec, true
}
