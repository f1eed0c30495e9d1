package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adaptive-quiz-service/internal/adaptive"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/scoring"
)

// AttemptStore abstracts how in-flight attempts are stored (in-memory, Redis, etc).
type AttemptStore interface {
	Put(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// BankRepository loads question-bank content (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// StateStore persists per-user adaptive state between sessions.
type StateStore interface {
	Get(ctx context.Context, userID string) (domain.UserState, error)
	Put(ctx context.Context, userID string, state domain.UserState) error
}

// Leaderboard accumulates scored points per bank. Implementations may be
// absent in minimal deployments.
type Leaderboard interface {
	AddScore(ctx context.Context, bankID, userID string, points float64) error
	Top(ctx context.Context, bankID string, n int) ([]domain.LeaderboardEntry, error)
}

// AnswerSubmission carries one answer event from the transport layer. The
// correctness flag is never accepted from outside; it is derived here from the
// option lookup.
type AnswerSubmission struct {
	QuestionID   string
	OptionID     string
	Confidence   int
	TimeSpentSec *float64
	Policy       string // optional per-answer override of the attempt policy
}

// AnswerOutcome is the result of scoring one submission.
type AnswerOutcome struct {
	QuestionID string               `json:"questionId"`
	Correct    bool                 `json:"correct"`
	Policy     string               `json:"policy"`
	Result     domain.ScoringResult `json:"result"`
	Progress   Progress             `json:"progress"`
}

// QuizService contains the adaptive quiz use cases.
type QuizService struct {
	attempts    AttemptStore
	banks       BankRepository
	states      StateStore
	leaderboard Leaderboard
	registry    *scoring.Registry
	selector    *adaptive.Selector
	tracker     *MetricsTracker
	log         *zap.Logger

	locale        string
	defaultPolicy string
	newID         func() string
}

// Options tune service-wide defaults.
type Options struct {
	Locale        string
	DefaultPolicy string
	Leaderboard   Leaderboard
}

func NewQuizService(attempts AttemptStore, banks BankRepository, states StateStore, registry *scoring.Registry, selector *adaptive.Selector, log *zap.Logger, opts Options) *QuizService {
	if log == nil {
		log = zap.NewNop()
	}
	locale := opts.Locale
	if locale == "" {
		locale = scoring.LocaleEN
	}
	policy := opts.DefaultPolicy
	if policy == "" {
		policy = scoring.NameStandard
	}
	return &QuizService{
		attempts:      attempts,
		banks:         banks,
		states:        states,
		leaderboard:   opts.Leaderboard,
		registry:      registry,
		selector:      selector,
		tracker:       NewMetricsTracker(),
		log:           log,
		locale:        locale,
		defaultPolicy: policy,
		newID:         func() string { return uuid.NewString() },
	}
}

// StartAttempt selects the next batch of questions for a user and opens an
// attempt session around them. The user's stored difficulty is stepped before
// selection so adaptation carries across sessions.
func (s *QuizService) StartAttempt(ctx context.Context, userID, bankID string, count int, policyName string) (*Attempt, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx, userID)
	if err != nil {
		// A missing or unreadable state degrades to a fresh profile.
		s.log.Warn("loading user state failed, starting fresh", zap.String("user", userID), zap.Error(err))
		state = domain.UserState{}
	}

	target := adaptive.NextDifficulty(state.StartingDifficulty(), state.Metrics)
	questions := s.selector.SelectNext(bank.Questions, count, state.Metrics, state.StartingDifficulty())

	if target != state.Difficulty {
		state.Difficulty = target
		if err := s.states.Put(ctx, userID, state); err != nil {
			s.log.Warn("persisting difficulty step failed", zap.String("user", userID), zap.Error(err))
		}
	}

	if policyName == "" {
		policyName = s.defaultPolicy
	}
	attempt := newAttempt(s.newID(), userID, bankID, policyName, questions, time.Now)
	s.attempts.Put(attempt)
	s.log.Info("attempt started",
		zap.String("attempt", attempt.ID()),
		zap.String("user", userID),
		zap.String("bank", bankID),
		zap.Int("questions", len(questions)),
		zap.Int("difficulty", target))
	return attempt, nil
}

// SubmitAnswer derives correctness from the selected option, scores the answer
// with the attempt's policy, updates the rolling metrics and the leaderboard,
// and broadcasts progress to subscribers.
func (s *QuizService) SubmitAnswer(ctx context.Context, attemptID string, sub AnswerSubmission) (AnswerOutcome, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return AnswerOutcome{}, domain.ErrAttemptNotFound
	}
	question, ok := attempt.Question(sub.QuestionID)
	if !ok {
		return AnswerOutcome{}, domain.ErrQuestionNotFound
	}
	if attempt.Answered(sub.QuestionID) {
		return AnswerOutcome{}, domain.ErrQuestionAnswered
	}

	// Trust boundary: the client only names an option, correctness comes from
	// the catalog.
	opt, found := question.OptionByID(sub.OptionID)
	correct := found && opt.Correct

	state, err := s.states.Get(ctx, attempt.UserID())
	if err != nil {
		s.log.Warn("loading user state failed, scoring without metrics", zap.String("user", attempt.UserID()), zap.Error(err))
		state = domain.UserState{}
	}
	metrics := state.Metrics

	policyName := sub.Policy
	if policyName == "" {
		policyName = attempt.PolicyName()
	}
	policy, known := s.registry.Resolve(policyName)
	if !known {
		s.log.Warn("unknown scoring policy, using fallback",
			zap.String("requested", policyName),
			zap.String("fallback", policy.Name()))
	}

	result := policy.Score(scoring.Context{
		Question: question,
		Answer: domain.Answer{
			QuestionID:   sub.QuestionID,
			OptionID:     sub.OptionID,
			Correct:      correct,
			Confidence:   sub.Confidence,
			TimeSpentSec: sub.TimeSpentSec,
		},
		Metrics: &metrics,
		Locale:  s.locale,
	})

	progress := attempt.applyResult(sub.QuestionID, result)

	state.Metrics = s.tracker.Apply(state.Metrics, correct, sub.TimeSpentSec)
	if err := s.states.Put(ctx, attempt.UserID(), state); err != nil {
		s.log.Warn("persisting metrics failed", zap.String("user", attempt.UserID()), zap.Error(err))
	}

	if s.leaderboard != nil && result.PointsEarned != 0 {
		if err := s.leaderboard.AddScore(ctx, attempt.BankID(), attempt.UserID(), result.PointsEarned); err != nil {
			s.log.Warn("leaderboard update failed", zap.String("bank", attempt.BankID()), zap.Error(err))
		}
	}

	return AnswerOutcome{
		QuestionID: sub.QuestionID,
		Correct:    correct,
		Policy:     policy.Name(),
		Result:     result,
		Progress:   progress,
	}, nil
}

// Subscribe returns a channel that receives progress updates for an attempt.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, attemptID string) (<-chan Progress, func(), error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, nil, domain.ErrAttemptNotFound
	}
	ch, cancel := attempt.subscribe()
	return ch, cancel, nil
}

// Leaderboard returns the top entries for a bank, or nil when no leaderboard
// backend is configured.
func (s *QuizService) LeaderboardTop(ctx context.Context, bankID string, n int) ([]domain.LeaderboardEntry, error) {
	if s.leaderboard == nil {
		return nil, nil
	}
	return s.leaderboard.Top(ctx, bankID, n)
}

// PolicyNames lists the registered scoring policies, for callers that want to
// validate a name before invoking.
func (s *QuizService) PolicyNames() []string {
	return s.registry.Names()
}

// Finish closes an attempt and returns its final progress snapshot.
func (s *QuizService) Finish(_ context.Context, attemptID string) (Progress, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return Progress{}, domain.ErrAttemptNotFound
	}
	final := attempt.Snapshot()
	attempt.closeSubscribers()
	s.attempts.Delete(attemptID)
	return final, nil
}

// Progress is a snapshot of an attempt's running totals.
type Progress struct {
	AttemptID      string    `json:"attemptId"`
	AnsweredCount  int       `json:"answeredCount"`
	QuestionCount  int       `json:"questionCount"`
	PointsEarned   float64   `json:"pointsEarned"`
	PointsPossible float64   `json:"pointsPossible"`
	Percentage     float64   `json:"percentage"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Attempt is one user's run through a selected set of questions.
type Attempt struct {
	id        string
	userID    string
	bankID    string
	policy    string
	createdAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	questions   []domain.Question
	results     map[string]domain.ScoringResult
	earned      float64
	possible    float64
	subscribers map[chan Progress]struct{}
}

func newAttempt(id, userID, bankID, policy string, questions []domain.Question, now func() time.Time) *Attempt {
	return &Attempt{
		id:          id,
		userID:      userID,
		bankID:      bankID,
		policy:      policy,
		createdAt:   now(),
		now:         now,
		questions:   questions,
		results:     make(map[string]domain.ScoringResult),
		subscribers: make(map[chan Progress]struct{}),
	}
}

// NewAttemptWithClock is test-only for deterministic timestamps.
func NewAttemptWithClock(id, userID, bankID, policy string, questions []domain.Question, now func() time.Time) *Attempt {
	return newAttempt(id, userID, bankID, policy, questions, now)
}

func (a *Attempt) ID() string         { return a.id }
func (a *Attempt) UserID() string     { return a.userID }
func (a *Attempt) BankID() string     { return a.bankID }
func (a *Attempt) PolicyName() string { return a.policy }

// Questions returns the selected questions in presentation order.
func (a *Attempt) Questions() []domain.Question {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.Question, len(a.questions))
	copy(out, a.questions)
	return out
}

// Question resolves one of the attempt's selected questions.
func (a *Attempt) Question(id string) (domain.Question, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, q := range a.questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// Answered reports whether a question already has a recorded result.
func (a *Attempt) Answered(questionID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.results[questionID]
	return ok
}

// Snapshot returns the current progress without mutating anything.
func (a *Attempt) Snapshot() Progress {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

func (a *Attempt) applyResult(questionID string, result domain.ScoringResult) Progress {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[questionID] = result
	a.earned += result.PointsEarned
	a.possible += result.PointsPossible
	return a.broadcastLocked()
}

func (a *Attempt) subscribe() (<-chan Progress, func()) {
	ch := make(chan Progress, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := a.snapshotLocked()
	a.mu.Unlock()

	ch <- initial

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Attempt) closeSubscribers() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ch := range a.subscribers {
		delete(a.subscribers, ch)
		close(ch)
	}
}

func (a *Attempt) broadcastLocked() Progress {
	p := a.snapshotLocked()
	for ch := range a.subscribers {
		select {
		case ch <- p:
		default:
			// Drop the stale update so slow subscribers never block scoring.
			select {
			case <-ch:
			default:
			}
			ch <- p
		}
	}
	return p
}

func (a *Attempt) snapshotLocked() Progress {
	pct := 0.0
	if a.possible != 0 {
		pct = a.earned / a.possible * 100
	}
	return Progress{
		AttemptID:      a.id,
		AnsweredCount:  len(a.results),
		QuestionCount:  len(a.questions),
		PointsEarned:   a.earned,
		PointsPossible: a.possible,
		Percentage:     pct,
		UpdatedAt:      a.now(),
	}
}
