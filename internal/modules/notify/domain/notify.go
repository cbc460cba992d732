package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrChecksumMismatch = errors.New("push provider checksum mismatch")
	ErrProviderTimeout  = errors.New("push provider timeout")
	ErrRejected         = errors.New("push rejected by provider")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Message is one push notification addressed to a single user.
type Message struct {
	UserID  string
	GroupID string
	Type    string
	Title   string
	Body    string
	Data    map[string]string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("push recipient is required")
	}
	if strings.TrimSpace(m.Type) == "" {
		return fmt.Errorf("push type is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("push body is required")
	}
	return nil
}

// Manifest pins the provider binary the host is allowed to launch. An empty
// binary selects the built-in log provider.
type Manifest struct {
	Binary string
	SHA256 string
}

func (m Manifest) External() bool {
	return strings.TrimSpace(m.Binary) != ""
}

func (m Manifest) Validate() error {
	if !m.External() {
		return nil
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("push provider sha256 must be lowercase 64-char hex")
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
}
