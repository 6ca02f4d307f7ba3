package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"launchhub/internal/apperrors"
	"launchhub/internal/insight"
	"launchhub/internal/model"
	"launchhub/pkg/outbox"
)

type fakeProjects struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	progress *fakeProgress
	events   []*outbox.Event
	getErrs  []error
}

func newFakeProjects(progress *fakeProgress) *fakeProjects {
	return &fakeProjects{projects: map[string]*model.Project{}, progress: progress}
}

func (f *fakeProjects) Create(_ context.Context, p *model.Project, initial *model.UserProgress, events []*outbox.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = p
	f.events = append(f.events, events...)
	if f.progress != nil {
		f.progress.put(initial)
	}
	return nil
}

func (f *fakeProjects) Get(_ context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.getErrs) > 0 {
		err := f.getErrs[0]
		f.getErrs = f.getErrs[1:]
		return nil, err
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("get project: %w", apperrors.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProjects) ListByUser(_ context.Context, userID string) ([]*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Project{}
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) UpdatePhaseData(_ context.Context, id, section string, data model.PhaseData, now time.Time, events []*outbox.Event) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if p.Data == nil {
		p.Data = map[string]model.PhaseData{}
	}
	p.Data[section] = data
	p.UpdatedAt = now
	f.events = append(f.events, events...)
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id string, events []*outbox.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.projects, id)
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeProjects) routingKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, e := range f.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}

// fakeProgress stores JSON copies so callers cannot alias stored documents.
type fakeProgress struct {
	mu     sync.Mutex
	docs   map[string][]byte
	events []*outbox.Event
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{docs: map[string][]byte{}}
}

func progressKey(userID, projectID string) string { return userID + "/" + projectID }

func (f *fakeProgress) put(u *model.UserProgress) {
	raw, err := json.Marshal(u)
	if err != nil {
		panic(err)
	}
	f.docs[progressKey(u.UserID, u.ProjectID)] = raw
}

func (f *fakeProgress) load(userID, projectID string) *model.UserProgress {
	raw, ok := f.docs[progressKey(userID, projectID)]
	if !ok {
		return nil
	}
	var u model.UserProgress
	if err := json.Unmarshal(raw, &u); err != nil {
		panic(err)
	}
	return &u
}

func (f *fakeProgress) Get(_ context.Context, userID, projectID string) (*model.UserProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(userID, projectID), nil
}

func (f *fakeProgress) Save(_ context.Context, u *model.UserProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(u)
	return nil
}

func (f *fakeProgress) Update(_ context.Context, userID, projectID string, fn func(u *model.UserProgress) (*model.UserProgress, []*outbox.Event, error)) (*model.UserProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, events, err := fn(f.load(userID, projectID))
	if err != nil {
		return nil, err
	}
	f.put(next)
	f.events = append(f.events, events...)
	return next, nil
}

func (f *fakeProgress) routingKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, e := range f.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[string]*model.User{}
	}
	if _, ok := f.users[u.Email]; ok {
		return apperrors.NewValidationError("email", "duplicate", "email already registered")
	}
	u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[u.Email] = u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]insight.Insights
	err     error
	sets    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]insight.Insights{}} }

func (f *fakeCache) Get(_ context.Context, projectID string) (*insight.Insights, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	in, ok := f.entries[projectID]
	if !ok {
		return nil, false, nil
	}
	return &in, true, nil
}

func (f *fakeCache) Set(_ context.Context, projectID string, in *insight.Insights) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.err != nil {
		return f.err
	}
	f.entries[projectID] = *in
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, projectID)
	return f.err
}

type fakeAnalytics struct {
	mu       sync.Mutex
	counters map[string]map[string]int64
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{counters: map[string]map[string]int64{}}
}

func (f *fakeAnalytics) Increment(_ context.Context, userID, field string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters[userID] == nil {
		f.counters[userID] = map[string]int64{}
	}
	f.counters[userID][field]++
	return nil
}

func (f *fakeAnalytics) IncrementExport(ctx context.Context, userID, format string) error {
	return f.Increment(ctx, userID, "export:"+format)
}

func (f *fakeAnalytics) Summary(_ context.Context, userID string) (*model.AnalyticsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.counters[userID]
	return &model.AnalyticsSummary{
		UserID:          userID,
		StepsUpdated:    c["steps_updated"],
		StepsCompleted:  c["steps_completed"],
		PhasesCompleted: c["phases_completed"],
		Exports:         map[string]int64{},
	}, nil
}
