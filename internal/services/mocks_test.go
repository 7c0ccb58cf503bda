package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kwoncho1001/Jomath/internal/cache"
	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	questions *mockQuestionRepo
	txns      *mockTransactionRepo
	mastery   *mockMasteryRepo
	settings  *mockSettingsRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		questions: &mockQuestionRepo{},
		txns:      &mockTransactionRepo{},
		mastery:   &mockMasteryRepo{},
		settings:  &mockSettingsRepo{byID: make(map[uint]models.AnalysisSettings)},
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository       { return m.questions }
func (m *mockRepository) Transaction() repositories.TransactionRepository { return m.txns }
func (m *mockRepository) Mastery() repositories.MasteryRepository         { return m.mastery }
func (m *mockRepository) Settings() repositories.SettingsRepository       { return m.settings }

type mockQuestionRepo struct {
	items []models.Question
}

func (r *mockQuestionRepo) ReplaceAll(ctx context.Context, questions []models.Question) error {
	r.items = append([]models.Question(nil), questions...)
	return nil
}

func (r *mockQuestionRepo) GetAll(ctx context.Context) ([]models.Question, error) {
	return append([]models.Question(nil), r.items...), nil
}

func (r *mockQuestionRepo) GetBySourceID(ctx context.Context, sourceID string) ([]models.Question, error) {
	var out []models.Question
	for _, q := range r.items {
		if q.SourceID == sourceID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *mockQuestionRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

type mockTransactionRepo struct {
	items []models.Transaction
}

func (r *mockTransactionRepo) AppendBatch(ctx context.Context, txns []models.Transaction) error {
	r.items = append(r.items, txns...)
	return nil
}

func (r *mockTransactionRepo) GetAll(ctx context.Context) ([]models.Transaction, error) {
	return append([]models.Transaction(nil), r.items...), nil
}

func (r *mockTransactionRepo) GetByStudent(ctx context.Context, studentID string, filters repositories.TransactionFilters) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, txn := range r.items {
		if txn.StudentID != studentID {
			continue
		}
		if filters.ExamKey != "" && txn.ExamKey != filters.ExamKey {
			continue
		}
		if filters.Type != nil && txn.Type != *filters.Type {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (r *mockTransactionRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

type mockMasteryRepo struct {
	items []models.MasteryRecord
}

func (r *mockMasteryRepo) UpsertBatch(ctx context.Context, records []models.MasteryRecord) error {
	for _, rec := range records {
		replaced := false
		for i := range r.items {
			if r.items[i].Key() == rec.Key() {
				r.items[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			r.items = append(r.items, rec)
		}
	}
	return nil
}

func (r *mockMasteryRepo) GetAll(ctx context.Context) ([]models.MasteryRecord, error) {
	return append([]models.MasteryRecord(nil), r.items...), nil
}

func (r *mockMasteryRepo) GetByStudent(ctx context.Context, studentID string) ([]models.MasteryRecord, error) {
	var out []models.MasteryRecord
	for _, rec := range r.items {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type mockSettingsRepo struct {
	byID   map[uint]models.AnalysisSettings
	nextID uint
}

func (r *mockSettingsRepo) Create(ctx context.Context, settings *models.AnalysisSettings) error {
	r.nextID++
	settings.ID = r.nextID
	r.byID[settings.ID] = *settings
	return nil
}

func (r *mockSettingsRepo) GetByID(ctx context.Context, id uint) (*models.AnalysisSettings, error) {
	settings, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &settings, nil
}

func (r *mockSettingsRepo) GetByName(ctx context.Context, name string) (*models.AnalysisSettings, error) {
	for _, settings := range r.byID {
		if settings.Name == name {
			s := settings
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSettingsRepo) List(ctx context.Context) ([]models.AnalysisSettings, error) {
	out := make([]models.AnalysisSettings, 0, len(r.byID))
	for _, settings := range r.byID {
		out = append(out, settings)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockSettingsRepo) Update(ctx context.Context, settings *models.AnalysisSettings) error {
	if _, ok := r.byID[settings.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.byID[settings.ID] = *settings
	return nil
}

func (r *mockSettingsRepo) Delete(ctx context.Context, id uint) error {
	delete(r.byID, id)
	return nil
}

// mockCache is an in-memory CacheService.
type mockCache struct {
	entries map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (c *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *mockCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
