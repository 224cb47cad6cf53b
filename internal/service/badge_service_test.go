package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tidianesow/medical-e-academy/internal/models"
	"github.com/tidianesow/medical-e-academy/internal/repository"
)

type memoryBadgeStore struct {
	mu        sync.Mutex
	awards    map[uint]map[models.BadgeCriteria]struct{}
	hasErr    error
	awardErr  error
	neverHeld bool
	attempts  int
}

func newMemoryBadgeStore() *memoryBadgeStore {
	return &memoryBadgeStore{awards: map[uint]map[models.BadgeCriteria]struct{}{}}
}

func (m *memoryBadgeStore) HasBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasErr != nil {
		return false, m.hasErr
	}
	if m.neverHeld {
		return false, nil
	}
	_, ok := m.awards[userID][criteria]
	return ok, nil
}

func (m *memoryBadgeStore) AwardBadge(ctx context.Context, userID uint, criteria models.BadgeCriteria) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.awardErr != nil {
		return m.awardErr
	}
	if _, ok := m.awards[userID]; !ok {
		m.awards[userID] = map[models.BadgeCriteria]struct{}{}
	}
	if _, ok := m.awards[userID][criteria]; ok {
		return repository.ErrBadgeAlreadyAwarded
	}
	m.awards[userID][criteria] = struct{}{}
	return nil
}

func (m *memoryBadgeStore) ListByUser(ctx context.Context, userID uint) ([]repository.UserBadgeRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []repository.UserBadgeRow
	for criteria := range m.awards[userID] {
		rows = append(rows, repository.UserBadgeRow{Name: string(criteria), Criteria: criteria})
	}
	return rows, nil
}

func (m *memoryBadgeStore) held(userID uint) []models.BadgeCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BadgeCriteria
	for criteria := range m.awards[userID] {
		out = append(out, criteria)
	}
	return out
}

type staticHistory struct {
	grades []repository.ExerciseGrade
	err    error
}

func (s staticHistory) ListGradesByUser(ctx context.Context, userID uint) ([]repository.ExerciseGrade, error) {
	return s.grades, s.err
}

func gradePairs(pairs ...[2]int) []repository.ExerciseGrade {
	out := make([]repository.ExerciseGrade, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, repository.ExerciseGrade{ExerciseID: uint(pair[0]), Grade: pair[1]})
	}
	return out
}

func TestBadgeRules(t *testing.T) {
	cases := []struct {
		name     string
		history  []repository.ExerciseGrade
		expected []models.BadgeCriteria
	}{
		{
			name:    "four exercises earn nothing",
			history: gradePairs([2]int{1, 40}, [2]int{2, 40}, [2]int{3, 40}, [2]int{4, 40}),
		},
		{
			name:     "five distinct exercises",
			history:  gradePairs([2]int{1, 40}, [2]int{2, 40}, [2]int{3, 40}, [2]int{4, 40}, [2]int{5, 40}),
			expected: []models.BadgeCriteria{models.BadgeCriteriaCompleteFiveExercises},
		},
		{
			name:    "repeated exercise counts once for completion",
			history: gradePairs([2]int{1, 40}, [2]int{1, 60}, [2]int{2, 40}, [2]int{3, 40}, [2]int{4, 40}),
		},
		{
			name:     "three high scores",
			history:  gradePairs([2]int{1, 90}, [2]int{2, 95}, [2]int{3, 100}),
			expected: []models.BadgeCriteria{models.BadgeCriteriaHighScoreThreeExercises},
		},
		{
			name:    "89 is not a high score",
			history: gradePairs([2]int{1, 90}, [2]int{2, 95}, [2]int{3, 89}),
		},
		{
			name:     "distinct high grades on one exercise each count",
			history:  gradePairs([2]int{1, 90}, [2]int{1, 95}, [2]int{2, 92}),
			expected: []models.BadgeCriteria{models.BadgeCriteriaHighScoreThreeExercises},
		},
		{
			name: "both badges",
			history: gradePairs([2]int{1, 91}, [2]int{2, 92}, [2]int{3, 93}, [2]int{4, 10}, [2]int{5, 20}),
			expected: []models.BadgeCriteria{
				models.BadgeCriteriaCompleteFiveExercises,
				models.BadgeCriteriaHighScoreThreeExercises,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemoryBadgeStore()
			svc := NewBadgeService(staticHistory{grades: tc.history}, store, zerolog.Nop())

			svc.EvaluateUser(context.Background(), 1)
			require.ElementsMatch(t, tc.expected, store.held(1))
		})
	}
}

func TestBadgeServiceEvaluateTwiceAwardsOnce(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	badgeRepo := repository.NewBadgeRepository(db)
	require.NoError(t, badgeRepo.UpsertCatalog(ctx, models.DefaultBadgeCatalog()))

	teacher := createUser(t, db, "Dr Diallo", models.RoleTeacher)
	student := createUser(t, db, "Fatou Sarr", models.RoleStudent)
	for i := 0; i < 5; i++ {
		exercise := createExercise(t, db, teacher.ID, string(rune('A'+i)), "reference")
		createSubmission(t, db, exercise.ID, student.ID, 95)
	}

	svc := NewBadgeService(repository.NewSubmissionRepository(db), badgeRepo, zerolog.Nop())
	svc.EvaluateUser(ctx, student.ID)
	svc.EvaluateUser(ctx, student.ID)

	var count int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("user_id = ?", student.ID).Count(&count).Error)
	require.Equal(t, int64(2), count)

	badges, err := svc.ListForUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, badges, 2)
}

func TestBadgeServiceConcurrentEvaluationsAwardOnce(t *testing.T) {
	store := newMemoryBadgeStore()
	store.neverHeld = true
	history := staticHistory{grades: gradePairs([2]int{1, 91}, [2]int{2, 92}, [2]int{3, 93}, [2]int{4, 94}, [2]int{5, 95})}
	svc := NewBadgeService(history, store, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.EvaluateUser(context.Background(), 4)
		}()
	}
	wg.Wait()

	require.Len(t, store.held(4), 2)
	require.Equal(t, 20, store.attempts)
}

func TestBadgeServiceSwallowsStoreErrors(t *testing.T) {
	store := newMemoryBadgeStore()
	store.awardErr = errors.New("write failed")
	history := staticHistory{grades: gradePairs([2]int{1, 91}, [2]int{2, 92}, [2]int{3, 93})}
	svc := NewBadgeService(history, store, zerolog.Nop())

	require.NotPanics(t, func() { svc.EvaluateUser(context.Background(), 1) })
	require.Empty(t, store.held(1))

	failing := NewBadgeService(staticHistory{err: errors.New("read failed")}, newMemoryBadgeStore(), zerolog.Nop())
	require.NotPanics(t, func() { failing.EvaluateUser(context.Background(), 1) })
}

func TestBadgeServiceSkipsAwardWhenHeld(t *testing.T) {
	store := newMemoryBadgeStore()
	require.NoError(t, store.AwardBadge(context.Background(), 1, models.BadgeCriteriaHighScoreThreeExercises))
	store.attempts = 0

	svc := NewBadgeService(staticHistory{grades: gradePairs([2]int{1, 91}, [2]int{2, 92}, [2]int{3, 93})}, store, zerolog.Nop())
	svc.EvaluateUser(context.Background(), 1)

	require.Zero(t, store.attempts)
}
