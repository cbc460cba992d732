package dto

type SendInput struct {
	UserID  string
	GroupID string
	Type    string
	Title   string
	Body    string
	Data    map[string]string
}

type DoctorResult struct {
	Provider        string
	Version         string
	Binary          string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}
