package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pursue/internal/modules/notify/domain"
	"pursue/internal/modules/notify/dto"
	notifyout "pursue/internal/modules/notify/port/out"
	apperrors "pursue/internal/platform/errors"
	"pursue/internal/platform/logging"
)

const defaultSendTimeout = 5 * time.Second

type Options struct {
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// PushService owns one long-lived provider connection and paces sends
// through a token bucket.
type PushService struct {
	manifest domain.Manifest
	host     notifyout.Host
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	conn notifyout.Connection
}

func NewPushService(manifest domain.Manifest, host notifyout.Host, opts Options, logger *zap.Logger) *PushService {
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &PushService{
		manifest: manifest,
		host:     host,
		limiter:  rate.NewLimiter(limit, burst),
		timeout:  timeout,
		logger:   logging.OrNop(logger),
	}
}

func (s *PushService) Send(ctx context.Context, message domain.Message) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for push slot: %w", err)
	}
	conn, err := s.connection(ctx)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := conn.Send(callCtx, message); err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: after %s", domain.ErrProviderTimeout, s.timeout)
		}
		if !errors.Is(err, domain.ErrRejected) {
			// the provider may have died; reconnect on the next send
			s.reset(conn)
		}
		return fmt.Errorf("send push to %s: %w", message.UserID, err)
	}
	return nil
}

// Doctor checks the configured provider without going through the rate
// limiter.
func (s *PushService) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	result := dto.DoctorResult{Binary: s.manifest.Binary}
	if err := s.manifest.Validate(); err != nil {
		result.Error = err.Error()
		return result, nil
	}
	if s.manifest.External() {
		result.BinaryReachable = fileExists(s.manifest.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", s.manifest.Binary)
			return result, nil
		}
		if err := checksumMatches(s.manifest.Binary, s.manifest.SHA256); err != nil {
			result.Error = err.Error()
			return result, nil
		}
	} else {
		result.BinaryReachable = true
	}
	result.ChecksumValid = true

	conn, err := s.connection(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	meta, err := conn.Metadata(callCtx)
	if err != nil {
		s.reset(conn)
		result.Error = err.Error()
		return result, nil
	}
	result.LifecycleOK = true
	result.Provider = meta.Name
	result.Version = meta.Version
	return result, nil
}

func (s *PushService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *PushService) connection(ctx context.Context) (notifyout.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	if err := s.manifest.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if s.manifest.External() {
		if err := checksumMatches(s.manifest.Binary, s.manifest.SHA256); err != nil {
			return nil, err
		}
	}
	conn, err := s.host.Open(ctx, s.manifest)
	if err != nil {
		return nil, fmt.Errorf("open push provider: %w", err)
	}
	s.logger.Info("push provider connected", zap.String("binary", s.manifest.Binary))
	s.conn = conn
	return conn, nil
}

func (s *PushService) reset(conn notifyout.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn.Close()
		s.conn = nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func checksumMatches(path, expected string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open push provider binary: %w", err)
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fmt.Errorf("hash push provider binary: %w", err)
	}
	if hex.EncodeToString(hash.Sum(nil)) != expected {
		return domain.ErrChecksumMismatch
	}
	return nil
}
