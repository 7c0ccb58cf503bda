package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kwoncho1001/Jomath/internal/events"
	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
)

// ChatCompleter is the slice of the OpenAI client the report service uses.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ReportService generates consultation summaries for a student from the
// mastery ledger and transaction log.
type ReportService interface {
	GenerateStudentSummary(ctx context.Context, studentID string) (*StudentSummary, error)
}

// StudentSummary is one generated consultation text.
type StudentSummary struct {
	StudentID   string    `json:"student_id"`
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

type reportService struct {
	repo      repositories.Repository
	client    ChatCompleter
	publisher events.EventPublisher
	logger    *slog.Logger
	model     string

	// retry tuning for rate-limited completion calls
	maxAttempts int
	retryDelay  time.Duration
}

func NewReportService(
	repo repositories.Repository,
	client ChatCompleter,
	publisher events.EventPublisher,
	logger *slog.Logger,
	model string,
) ReportService {
	return &reportService{
		repo:        repo,
		client:      client,
		publisher:   publisher,
		logger:      logger,
		model:       model,
		maxAttempts: 3,
		retryDelay:  time.Second,
	}
}

func (s *reportService) GenerateStudentSummary(ctx context.Context, studentID string) (*StudentSummary, error) {
	if s.client == nil {
		return nil, ErrAISummaryUnavailable
	}

	records, err := s.repo.Mastery().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoMasteryData
	}

	txns, err := s.repo.Transaction().GetByStudent(ctx, studentID, repositories.TransactionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	prompt := buildSummaryPrompt(studentID, records, txns)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	summary := &StudentSummary{
		StudentID:   studentID,
		Content:     content,
		Model:       s.model,
		GeneratedAt: time.Now().UTC(),
	}

	event := events.NewAnalysisEvent(events.EventAISummaryGenerated, events.AISummaryGeneratedEvent{
		StudentID:   studentID,
		Model:       s.model,
		GeneratedAt: summary.GeneratedAt,
	})
	if err := s.publisher.PublishAnalysisEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish AI summary event", "student_id", studentID, "error", err)
	}

	return summary, nil
}

// complete calls the chat API, retrying rate-limited requests with a doubling
// delay.
func (s *reportService) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "당신은 수학 학원의 베테랑 상담 컨설턴트입니다. 학생의 성취 데이터를 바탕으로 학부모 상담용 요약을 작성합니다.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	delay := s.retryDelay
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("completion returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err

		var apiErr *openai.APIError
		if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != 429 {
			return "", fmt.Errorf("completion failed: %w", err)
		}

		s.logger.Warn("Completion rate limited, retrying",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"delay", delay.String())

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", s.maxAttempts, lastErr)
}

// buildSummaryPrompt assembles the consultation prompt: overall accuracy,
// top-3 strengths and weaknesses by display score, and the weakest type's
// tier breakdown. Types without enough evidence are named as such rather than
// shown with sentinel numbers.
func buildSummaryPrompt(studentID string, records []models.MasteryRecord, txns []models.Transaction) string {
	scored := make([]models.MasteryRecord, 0, len(records))
	insufficient := make([]string, 0)
	for _, rec := range records {
		if rec.DisplayScore >= 0 {
			scored = append(scored, rec)
		} else {
			insufficient = append(insufficient, rec.DetailType)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].DisplayScore > scored[j].DisplayScore
	})

	var b strings.Builder
	fmt.Fprintf(&b, "학생: %s\n", studentID)
	fmt.Fprintf(&b, "기록된 풀이 수: %d\n", len(txns))
	if latest := latestExamKey(txns); latest != "" {
		fmt.Fprintf(&b, "최근 응시: %s\n", latest)
	}

	b.WriteString("\n[강점 유형 (상위 3)]\n")
	for i, rec := range scored {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: 종합 %.1f점, 정답률 %.1f%% (%d회 시도)\n",
			rec.DetailType, rec.DisplayScore, rec.Accuracy, rec.TotalAttempts)
	}

	b.WriteString("\n[보완 필요 유형 (하위 3)]\n")
	for i := len(scored) - 1; i >= 0 && i >= len(scored)-3; i-- {
		rec := scored[i]
		fmt.Fprintf(&b, "- %s: 종합 %.1f점, 정답률 %.1f%% (%d회 시도)\n",
			rec.DetailType, rec.DisplayScore, rec.Accuracy, rec.TotalAttempts)
	}

	if len(scored) > 0 {
		weakest := scored[len(scored)-1]
		b.WriteString("\n[최약점 유형 난이도별 점수]\n")
		fmt.Fprintf(&b, "- %s: 상 %s / 중 %s / 하 %s\n",
			weakest.DetailType,
			tierLabel(weakest.ScoreHigh),
			tierLabel(weakest.ScoreMid),
			tierLabel(weakest.ScoreLow))
	}

	if len(insufficient) > 0 {
		fmt.Fprintf(&b, "\n데이터 부족 유형: %s\n", strings.Join(insufficient, ", "))
	}

	b.WriteString("\n위 데이터를 바탕으로 학부모 상담용 요약을 3~4문단으로 작성해 주세요. " +
		"강점, 보완점, 추천 학습 방향 순서로 서술하고, 데이터가 부족한 유형에 대해서는 단정하지 마세요.")

	return b.String()
}

func tierLabel(score float64) string {
	if score < 0 {
		return "데이터 부족"
	}
	return fmt.Sprintf("%.1f점", score)
}

// latestExamKey returns the exam key of the newest Test transaction.
func latestExamKey(txns []models.Transaction) string {
	var latest time.Time
	var key string
	for _, txn := range txns {
		if txn.Type != models.SourceTest {
			continue
		}
		if key == "" || txn.Date.After(latest) {
			latest = txn.Date
			key = txn.ExamKey
		}
	}
	return key
}
