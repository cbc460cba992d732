package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipPending MembershipStatus = "pending"
	MembershipRemoved MembershipStatus = "removed"
)

type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

type MetricType string

const (
	MetricBinary   MetricType = "binary"
	MetricNumeric  MetricType = "numeric"
	MetricDuration MetricType = "duration"
)

type User struct {
	ID          string
	DisplayName string
	IsPremium   bool
}

type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
	DeletedAt *time.Time
}

type Membership struct {
	GroupID string
	UserID  string
	Status  MembershipStatus
}

type Goal struct {
	ID          string
	GroupID     string
	Title       string
	Cadence     Cadence
	Metric      MetricType
	TargetValue *float64
	// ActiveDays is a weekday bitmask, Sunday = bit 0. Zero means every day.
	ActiveDays uint8
	Archived   bool
}

type ProgressEntry struct {
	ID         string
	GoalID     string
	UserID     string
	Value      float64
	LoggedDate time.Time
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("group id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("group name is required")
	}
	return nil
}

func (g Group) Deleted() bool {
	return g.DeletedAt != nil
}

func (s MembershipStatus) Validate() error {
	switch s {
	case MembershipActive, MembershipPending, MembershipRemoved:
		return nil
	default:
		return fmt.Errorf("unsupported membership status %q", string(s))
	}
}

func (m Membership) Validate() error {
	if strings.TrimSpace(m.GroupID) == "" || strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("membership needs group and user")
	}
	return m.Status.Validate()
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("goal id is required")
	}
	if strings.TrimSpace(g.GroupID) == "" {
		return fmt.Errorf("goal %s has no group", g.ID)
	}
	switch g.Cadence {
	case CadenceDaily, CadenceWeekly:
	default:
		return fmt.Errorf("goal %s: unsupported cadence %q", g.ID, string(g.Cadence))
	}
	switch g.Metric {
	case MetricBinary:
	case MetricNumeric, MetricDuration:
		if g.TargetValue == nil {
			return fmt.Errorf("goal %s: %s goals need a target value", g.ID, g.Metric)
		}
	default:
		return fmt.Errorf("goal %s: unsupported metric type %q", g.ID, string(g.Metric))
	}
	if g.ActiveDays > 0x7f {
		return fmt.Errorf("goal %s: active days mask %#x has bits beyond saturday", g.ID, g.ActiveDays)
	}
	return nil
}

func (p ProgressEntry) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("progress id is required")
	}
	if strings.TrimSpace(p.GoalID) == "" || strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("progress %s needs goal and user", p.ID)
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("progress %s has a non-finite value", p.ID)
	}
	if p.LoggedDate.IsZero() {
		return fmt.Errorf("progress %s has no logged date", p.ID)
	}
	return nil
}

// Weekdays builds an active-day mask from weekday names such as "mon" or
// "Monday". An empty list yields zero (every day).
func Weekdays(names []string) (uint8, error) {
	var mask uint8
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if len(key) > 3 {
			key = key[:3]
		}
		day, ok := weekdayByPrefix[key]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", name)
		}
		mask |= 1 << uint(day)
	}
	return mask, nil
}

var weekdayByPrefix = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Fixture is a complete roster snapshot loaded in one go.
type Fixture struct {
	Users       []User
	Groups      []Group
	Memberships []Membership
	Goals       []Goal
	Progress    []ProgressEntry
}
