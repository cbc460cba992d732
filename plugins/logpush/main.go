package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	notifyrpc "pursue/internal/modules/notify/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const outputEnv = "PURSUE_LOGPUSH_PATH"

// server appends every accepted push as one JSON line.
type server struct {
	mu   sync.Mutex
	path string
}

type record struct {
	At      time.Time         `json:"at"`
	UserID  string            `json:"user_id"`
	GroupID string            `json:"group_id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}

func (s *server) GetMetadata(context.Context, *notifyrpc.Empty) (*notifyrpc.Metadata, error) {
	return &notifyrpc.Metadata{Name: "logpush", Version: "1.0.0"}, nil
}

func (s *server) Send(_ context.Context, in *notifyrpc.SendRequest) (*notifyrpc.SendResponse, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return &notifyrpc.SendResponse{Accepted: false, Reason: "missing user"}, nil
	}
	line, err := json.Marshal(record{
		At:      time.Now().UTC(),
		UserID:  in.UserID,
		GroupID: in.GroupID,
		Type:    in.Type,
		Title:   in.Title,
		Body:    in.Body,
		Data:    in.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode push: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open push log: %w", err)
	}
	defer file.Close()
	if _, err := file.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("write push log: %w", err)
	}
	return &notifyrpc.SendResponse{Accepted: true}, nil
}

func main() {
	path := os.Getenv(outputEnv)
	if path == "" {
		path = "logpush.jsonl"
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: notifyrpc.HandshakeConfig,
		Plugins:         notifyrpc.PluginMap(&server{path: path}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
