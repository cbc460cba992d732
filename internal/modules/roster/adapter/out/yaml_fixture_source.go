package out

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pursue/internal/modules/roster/domain"
	rosterout "pursue/internal/modules/roster/port/out"
	"pursue/internal/platform/clock"
)

type fixtureFile struct {
	Users []struct {
		ID          string `yaml:"id"`
		DisplayName string `yaml:"display_name"`
		Premium     bool   `yaml:"premium"`
	} `yaml:"users"`
	Groups []struct {
		ID      string   `yaml:"id"`
		Name    string   `yaml:"name"`
		Members []string `yaml:"members"`
		Pending []string `yaml:"pending"`
		Goals   []struct {
			ID      string   `yaml:"id"`
			Title   string   `yaml:"title"`
			Cadence string   `yaml:"cadence"`
			Metric  string   `yaml:"metric"`
			Target  *float64 `yaml:"target"`
			Days    []string `yaml:"days"`
			Archive bool     `yaml:"archived"`
		} `yaml:"goals"`
	} `yaml:"groups"`
	Progress []struct {
		ID    string  `yaml:"id"`
		User  string  `yaml:"user"`
		Goal  string  `yaml:"goal"`
		Value float64 `yaml:"value"`
		Date  string  `yaml:"date"`
	} `yaml:"progress"`
}

type YAMLFixtureSource struct{}

func NewYAMLFixtureSource() rosterout.FixtureSource {
	return YAMLFixtureSource{}
}

func (YAMLFixtureSource) Load(_ context.Context, path string) (domain.Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.Fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}

	fixture := domain.Fixture{}
	for _, u := range file.Users {
		fixture.Users = append(fixture.Users, domain.User{ID: u.ID, DisplayName: u.DisplayName, IsPremium: u.Premium})
	}
	for _, g := range file.Groups {
		fixture.Groups = append(fixture.Groups, domain.Group{ID: g.ID, Name: g.Name})
		for _, member := range g.Members {
			fixture.Memberships = append(fixture.Memberships, domain.Membership{GroupID: g.ID, UserID: member, Status: domain.MembershipActive})
		}
		for _, member := range g.Pending {
			fixture.Memberships = append(fixture.Memberships, domain.Membership{GroupID: g.ID, UserID: member, Status: domain.MembershipPending})
		}
		for _, goal := range g.Goals {
			mask, err := domain.Weekdays(goal.Days)
			if err != nil {
				return domain.Fixture{}, fmt.Errorf("goal %s: %w", goal.ID, err)
			}
			cadence := domain.Cadence(goal.Cadence)
			if cadence == "" {
				cadence = domain.CadenceDaily
			}
			metric := domain.MetricType(goal.Metric)
			if metric == "" {
				metric = domain.MetricBinary
			}
			fixture.Goals = append(fixture.Goals, domain.Goal{
				ID:          goal.ID,
				GroupID:     g.ID,
				Title:       goal.Title,
				Cadence:     cadence,
				Metric:      metric,
				TargetValue: goal.Target,
				ActiveDays:  mask,
				Archived:    goal.Archive,
			})
		}
	}
	for i, p := range file.Progress {
		logged, err := clock.ParseDate(p.Date)
		if err != nil {
			return domain.Fixture{}, fmt.Errorf("progress for %s/%s: %w", p.User, p.Goal, err)
		}
		entryID := p.ID
		if entryID == "" {
			// stable ids keep re-imports idempotent
			entryID = fmt.Sprintf("%s:%s:%s:%d", p.User, p.Goal, p.Date, i)
		}
		fixture.Progress = append(fixture.Progress, domain.ProgressEntry{
			ID:         entryID,
			GoalID:     p.Goal,
			UserID:     p.User,
			Value:      p.Value,
			LoggedDate: logged,
		})
	}
	return fixture, nil
}
