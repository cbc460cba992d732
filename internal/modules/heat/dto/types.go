package dto

import "time"

type BatchInput struct {
	// Date defaults to yesterday in the reference time zone.
	Date *time.Time
}

type GroupFailure struct {
	GroupID string `json:"group_id"`
	Error   string `json:"error"`
}

type BatchOutput struct {
	Success   bool           `json:"success"`
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Errors    int            `json:"errors"`
	RunID     string         `json:"run_id"`
	Date      string         `json:"date"`
	Failures  []GroupFailure `json:"failures,omitempty"`
}

type CalculateInput struct {
	GroupID string
	Date    *time.Time
}

type CalculateOutput struct {
	GroupID    string   `json:"group_id"`
	Date       string   `json:"date"`
	GCR        float64  `json:"gcr"`
	Skipped    bool     `json:"skipped"`
	Heat       Summary  `json:"heat"`
	Milestones []string `json:"milestones"`
}

type InitGroupInput struct {
	GroupID string
}

// Summary is the "heat" object embedded in group list and detail views.
type Summary struct {
	Score        float64  `json:"score"`
	Tier         int      `json:"tier"`
	TierName     string   `json:"tier_name"`
	StreakDays   int      `json:"streak_days"`
	PeakScore    float64  `json:"peak_score"`
	PeakDate     *string  `json:"peak_date,omitempty"`
	YesterdayGCR *float64 `json:"yesterday_gcr,omitempty"`
	BaselineGCR  *float64 `json:"baseline_gcr,omitempty"`
}

type BoardEntry struct {
	GroupID   string  `json:"group_id"`
	GroupName string  `json:"group_name"`
	Heat      Summary `json:"heat"`
}

type HistoryInput struct {
	GroupID  string
	CallerID string
	// Days of zero selects the configured default.
	Days int
}

type CurrentView struct {
	Score      float64 `json:"score"`
	Tier       int     `json:"tier"`
	TierName   string  `json:"tier_name"`
	StreakDays int     `json:"streak_days"`
	PeakScore  float64 `json:"peak_score"`
}

type HistoryPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	Tier  int     `json:"tier"`
	GCR   float64 `json:"gcr"`
}

type StatsView struct {
	PeakScore    float64  `json:"peak_score"`
	PeakDate     *string  `json:"peak_date"`
	YesterdayGCR *float64 `json:"yesterday_gcr"`
	BaselineGCR  *float64 `json:"baseline_gcr"`
}

type HistoryOutput struct {
	Current         CurrentView    `json:"current"`
	History         []HistoryPoint `json:"history"`
	Stats           *StatsView     `json:"stats"`
	PremiumRequired bool           `json:"premium_required"`
}
