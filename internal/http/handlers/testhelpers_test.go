package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"videoserver/internal/domain"
	"videoserver/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// memStore is an in-memory stand-in for the persistence layer. It backs
// all four repository interfaces so handler tests can run without a
// database.
type memStore struct {
	projects  map[string]*domain.VideoProject
	tasks     map[string]*domain.VideoTask
	credits   map[string]int
	counters  map[string]int
	countries map[string]map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		projects:  map[string]*domain.VideoProject{},
		tasks:     map[string]*domain.VideoTask{},
		credits:   map[string]int{},
		counters:  map[string]int{},
		countries: map[string]map[string]int{},
	}
}

func (m *memStore) Create(_ context.Context, project *domain.VideoProject) error {
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id, ownerID string) (*domain.VideoProject, error) {
	p, ok := m.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	cp := *p
	cp.VideoTasks = m.tasksOf(id)
	return &cp, nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]domain.VideoProject, error) {
	var out []domain.VideoProject
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			cp := *p
			cp.VideoTasks = m.tasksOf(p.ID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateMeta(_ context.Context, id, ownerID, name, description string) error {
	p, ok := m.projects[id]
	if !ok || p.OwnerID != ownerID {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	p.Name, p.Description, p.UpdatedAt = name, description, time.Now().UTC()
	return nil
}

func (m *memStore) UpdateBrief(_ context.Context, id, subject, script string) error {
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	p.VideoSubject, p.VideoScript = subject, script
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status domain.ProjectStatus) error {
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	p.Status = status
	return nil
}

func (m *memStore) CompleteIfActive(_ context.Context, id string) error {
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	if p.Status == domain.ProjectStatusActive {
		p.Status = domain.ProjectStatusCompleted
	}
	return nil
}

func (m *memStore) OwnerOf(_ context.Context, id string) (string, error) {
	p, ok := m.projects[id]
	if !ok {
		return "", fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	return p.OwnerID, nil
}

func (m *memStore) tasksOf(projectID string) []domain.VideoTask {
	out := []domain.VideoTask{}
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memStore) Enqueue(_ context.Context, task *domain.VideoTask, ownerID string) (int, error) {
	balance := m.credits[ownerID]
	if balance < task.CreditsCost {
		return 0, domain.ErrCreditsExhausted
	}
	m.credits[ownerID] = balance - task.CreditsCost
	cp := *task
	m.tasks[task.ID] = &cp
	return m.credits[ownerID], nil
}

func (m *memStore) GetByIDTask(ctx context.Context, id string) (*domain.VideoTask, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListByProject(_ context.Context, projectID string) ([]domain.VideoTask, error) {
	return m.tasksOf(projectID), nil
}

func (m *memStore) ClaimPending(_ context.Context) (*domain.VideoTask, error) {
	var oldest *domain.VideoTask
	for _, t := range m.tasks {
		if t.Status != domain.TaskStatusPending {
			continue
		}
		if oldest == nil || t.CreatedAt.Before(oldest.CreatedAt) {
			oldest = t
		}
	}
	if oldest == nil {
		return nil, domain.ErrNotFound
	}
	oldest.Status = domain.TaskStatusProcessing
	cp := *oldest
	return &cp, nil
}

func (m *memStore) SetExternalTask(_ context.Context, id, taskID string) error {
	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	t.TaskID = taskID
	return nil
}

func (m *memStore) UpdateProgress(_ context.Context, id string, progress int) error {
	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	t.SetProgress(progress)
	return nil
}

func (m *memStore) MarkCompleted(_ context.Context, id, videoURL, thumbnailURL string) error {
	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	return t.MarkCompleted(videoURL, thumbnailURL)
}

func (m *memStore) MarkFailed(_ context.Context, id, reason string) error {
	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	return t.MarkFailed(reason)
}

func (m *memStore) TerminalCounts(_ context.Context, projectID string) (int, int, int, error) {
	var total, completed, failed int
	for _, t := range m.tasks {
		if t.ProjectID != projectID {
			continue
		}
		total++
		switch t.Status {
		case domain.TaskStatusCompleted:
			completed++
		case domain.TaskStatusFailed:
			failed++
		}
	}
	return total, completed, failed, nil
}

func (m *memStore) Balance(_ context.Context, ownerID string) (int, error) {
	return m.credits[ownerID], nil
}

func (m *memStore) Grant(_ context.Context, ownerID string, amount int) error {
	m.credits[ownerID] += amount
	return nil
}

func (m *memStore) IncrementCounters(_ context.Context, day string, counters map[string]int) error {
	for key, n := range counters {
		m.counters[key] += n
	}
	return nil
}

func (m *memStore) IncrementCountry(_ context.Context, day, country string, requests int) error {
	if m.countries[day] == nil {
		m.countries[day] = map[string]int{}
	}
	m.countries[day][country] += requests
	return nil
}

func (m *memStore) CountryRequests(_ context.Context, day string) ([]domain.CountryCount, error) {
	out := []domain.CountryCount{}
	for country, n := range m.countries[day] {
		out = append(out, domain.CountryCount{Country: country, Requests: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Requests != out[j].Requests {
			return out[i].Requests > out[j].Requests
		}
		return out[i].Country < out[j].Country
	})
	return out, nil
}

func (m *memStore) GetSummary(_ context.Context) (*domain.AnalyticsDaily, error) {
	return &domain.AnalyticsDaily{
		Day:             time.Now().UTC().Format("2006-01-02"),
		VideosRequested: m.counters[domain.CounterVideosRequested],
		VideosGenerated: m.counters[domain.CounterVideosGenerated],
		VideosFailed:    m.counters[domain.CounterVideosFailed],
		EditsRequested:  m.counters[domain.CounterEditsRequested],
		CreditsSpent:    m.counters[domain.CounterCreditsSpent],
	}, nil
}

// taskRepo adapts memStore to domain.TaskRepository; the project side of
// the store already matches the interface method set.
type taskRepo struct{ *memStore }

func (r taskRepo) GetByID(ctx context.Context, id string) (*domain.VideoTask, error) {
	return r.memStore.GetByIDTask(ctx, id)
}

func newTestApp(store *memStore) *App {
	return &App{
		Log:            zerolog.Nop(),
		Projects:       store,
		Tasks:          taskRepo{store},
		Credits:        store,
		Analytics:      store,
		GenerationCost: 5,
		EditCost:       2,
	}
}

// newRequest builds a request carrying the authenticated user and the
// given chi URL params.
func newRequest(t *testing.T, method, target, userID, body string, params map[string]string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := middleware.ContextWithUserID(req.Context(), userID)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}
