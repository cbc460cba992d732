package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"pursue/internal/modules/heat/domain"
	heatout "pursue/internal/modules/heat/port/out"
	apperrors "pursue/internal/platform/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	noon   = time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
)

func ptr(v float64) *float64 { return &v }

type memRoster struct {
	mu       sync.Mutex
	groups   []domain.GroupRef
	members  map[string][]string
	goals    map[string][]domain.Goal
	progress map[string][]domain.ProgressEntry
	failOn   map[string]error
}

func newMemRoster() *memRoster {
	return &memRoster{
		members:  map[string][]string{},
		goals:    map[string][]domain.Goal{},
		progress: map[string][]domain.ProgressEntry{},
		failOn:   map[string]error{},
	}
}

func progressKey(groupID string, date time.Time) string {
	return groupID + "|" + date.Format("2006-01-02")
}

func (r *memRoster) addGroup(id string, members []string, goals ...domain.Goal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, domain.GroupRef{ID: id, Name: "Group " + id})
	r.members[id] = members
	r.goals[id] = goals
}

func (r *memRoster) log(groupID string, date time.Time, entries ...domain.ProgressEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(groupID, date)
	r.progress[key] = append(r.progress[key], entries...)
}

func (r *memRoster) CandidateGroups(context.Context) ([]domain.GroupRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.GroupRef(nil), r.groups...), nil
}

func (r *memRoster) Group(_ context.Context, groupID string) (domain.GroupRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return domain.GroupRef{}, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
}

func (r *memRoster) ActiveMembers(_ context.Context, groupID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[groupID]; err != nil {
		return nil, err
	}
	return append([]string(nil), r.members[groupID]...), nil
}

func (r *memRoster) IsActiveMember(_ context.Context, groupID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[groupID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoster) Goals(_ context.Context, groupID string) ([]domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Goal(nil), r.goals[groupID]...), nil
}

func (r *memRoster) ProgressOn(_ context.Context, groupID string, date time.Time) ([]domain.ProgressEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ProgressEntry(nil), r.progress[progressKey(groupID, date)]...), nil
}

type memCompletions struct {
	mu      sync.Mutex
	records map[string]domain.DailyCompletion
	upserts int
}

func newMemCompletions() *memCompletions {
	return &memCompletions{records: map[string]domain.DailyCompletion{}}
}

func (s *memCompletions) Upsert(_ context.Context, record domain.DailyCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[progressKey(record.GroupID, record.Date)] = record
	s.upserts++
	return nil
}

func (s *memCompletions) Get(_ context.Context, groupID string, date time.Time) (domain.DailyCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[progressKey(groupID, date)]
	if !ok {
		return domain.DailyCompletion{}, apperrors.ErrNotFound
	}
	return record, nil
}

func (s *memCompletions) Range(_ context.Context, groupID string, from, to time.Time) ([]domain.DailyCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.DailyCompletion{}
	for _, record := range s.records {
		if record.GroupID == groupID && !record.Date.Before(from) && !record.Date.After(to) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memCompletions) seed(groupID string, to time.Time, days int, gcr float64) {
	for i := 1; i <= days; i++ {
		d := to.AddDate(0, 0, -i)
		_ = s.Upsert(context.Background(), domain.DailyCompletion{GroupID: groupID, Date: d, TotalPossible: 1, GCR: gcr})
	}
}

type memMomentum struct {
	mu        sync.Mutex
	rows      map[string]domain.GroupMomentum
	snapshots map[string][]domain.Snapshot
	failOn    map[string]error
}

func newMemMomentum() *memMomentum {
	return &memMomentum{
		rows:      map[string]domain.GroupMomentum{},
		snapshots: map[string][]domain.Snapshot{},
		failOn:    map[string]error{},
	}
}

func (s *memMomentum) Init(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[groupID]; !ok {
		s.rows[groupID] = domain.NewGroupMomentum(groupID)
	}
	return nil
}

func (s *memMomentum) Get(_ context.Context, groupID string) (domain.GroupMomentum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[groupID]
	if !ok {
		return domain.GroupMomentum{}, apperrors.ErrNotFound
	}
	return row, nil
}

func (s *memMomentum) Transition(_ context.Context, groupID string, fn heatout.TransitionFunc) (domain.GroupMomentum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[groupID]; err != nil {
		return domain.GroupMomentum{}, err
	}
	current, ok := s.rows[groupID]
	if !ok {
		current = domain.NewGroupMomentum(groupID)
	}
	next, snapshot, commit, err := fn(current)
	if err != nil {
		return domain.GroupMomentum{}, err
	}
	if !commit {
		return current, nil
	}
	s.rows[groupID] = next
	s.snapshots[groupID] = append(s.snapshots[groupID], snapshot)
	return next, nil
}

func (s *memMomentum) Snapshots(_ context.Context, groupID string, from, to time.Time) ([]domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Snapshot{}
	for _, snap := range s.snapshots[groupID] {
		if !snap.Date.Before(from) && !snap.Date.After(to) {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *memMomentum) put(m domain.GroupMomentum) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[m.GroupID] = m
}

type memEntitlements map[string]bool

func (e memEntitlements) IsPremium(_ context.Context, userID string) (bool, error) {
	return e[userID], nil
}

type recordingPush struct {
	mu   sync.Mutex
	sent []heatout.PushMessage
	fail bool
}

func (p *recordingPush) SendPush(_ context.Context, message heatout.PushMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("push provider unavailable")
	}
	p.sent = append(p.sent, message)
	return nil
}

func (p *recordingPush) messages() []heatout.PushMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]heatout.PushMessage(nil), p.sent...)
}
