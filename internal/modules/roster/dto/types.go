package dto

import "time"

type ImportInput struct {
	Path string
}

type ImportOutput struct {
	Users       int
	Groups      int
	Memberships int
	Goals       int
	Progress    int
}

type CreateGroupInput struct {
	ID   string
	Name string
}

type DeleteGroupInput struct {
	GroupID string
	Hard    bool
}

type GroupOutput struct {
	ID        string
	Name      string
	DeletedAt *time.Time
}

type GoalOutput struct {
	ID         string
	Title      string
	Cadence    string
	MetricType string
	Target     *float64
	ActiveDays uint8
}

type ProgressOutput struct {
	UserID string
	GoalID string
	Value  float64
}
