package analysis

import (
	"github.com/kwoncho1001/Jomath/internal/models"
)

// QuestionRef addresses one catalog question by its composite exam key and
// ordinal number.
type QuestionRef struct {
	ExamKey string
	Number  int
}

// ExamKey builds the composite "subject|sourceID" key under which transactions
// are recorded. Callers pass already-normalized parts.
func ExamKey(subject, sourceID string) string {
	return subject + "|" + sourceID
}

// Catalog is a pre-indexed, normalized view of the question bank. Questions
// are reference data; the catalog never changes during a pipeline run.
type Catalog struct {
	questions []models.Question
	byExam    map[string][]models.Question // bare exam/book id
	byBook    map[string][]models.Question // composite "subject|id"
	byRef     map[QuestionRef]models.Question
	paths     map[QuestionRef]models.TopicPath
}

// NewCatalog indexes a question list. Every identifier field is normalized
// once here; duplicate (exam key, number) pairs resolve last-seen-wins to
// tolerate malformed source catalogs.
func NewCatalog(questions []models.Question) *Catalog {
	c := &Catalog{
		questions: make([]models.Question, 0, len(questions)),
		byExam:    make(map[string][]models.Question),
		byBook:    make(map[string][]models.Question),
		byRef:     make(map[QuestionRef]models.Question),
		paths:     make(map[QuestionRef]models.TopicPath),
	}

	for _, q := range questions {
		nq := q
		nq.SourceID = Normalize(q.SourceID)
		nq.Subject = Normalize(q.Subject)
		nq.MajorUnit = Normalize(q.MajorUnit)
		nq.MinorUnit = Normalize(q.MinorUnit)
		nq.DetailType = Normalize(q.DetailType)

		c.questions = append(c.questions, nq)
		c.byExam[nq.SourceID] = append(c.byExam[nq.SourceID], nq)

		key := ExamKey(nq.Subject, nq.SourceID)
		c.byBook[key] = append(c.byBook[key], nq)

		ref := QuestionRef{ExamKey: key, Number: nq.Number}
		c.byRef[ref] = nq
		c.paths[ref] = nq.Topic()
	}

	return c
}

// Questions returns the normalized catalog contents.
func (c *Catalog) Questions() []models.Question {
	return c.questions
}

// QuestionsForExam returns every catalog question filed under a bare exam id.
func (c *Catalog) QuestionsForExam(examID string) []models.Question {
	return c.byExam[examID]
}

// QuestionsForBook returns every catalog question filed under a composite
// "subject|book" key.
func (c *Catalog) QuestionsForBook(bookKey string) []models.Question {
	return c.byBook[bookKey]
}

// Lookup resolves a transaction's question. ok is false when the catalog has
// no entry for the reference.
func (c *Catalog) Lookup(ref QuestionRef) (models.Question, bool) {
	q, ok := c.byRef[ref]
	return q, ok
}

// PathFor returns the full topic path of a catalog question.
func (c *Catalog) PathFor(ref QuestionRef) (models.TopicPath, bool) {
	p, ok := c.paths[ref]
	return p, ok
}
