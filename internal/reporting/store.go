package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clearbill/payments/internal/config"
)

// ErrReportNotFound is returned when no report has been generated for an
// area yet.
var ErrReportNotFound = errors.New("report not found")

// ReportStore persists the latest report per area.
type ReportStore interface {
	Save(ctx context.Context, report *AreaReport) error
	Load(ctx context.Context, areaID string) (*AreaReport, error)
}

// RedisStore keeps reports in Redis with a TTL: a report older than the
// TTL is stale enough to be worthless, and the next reconciler run
// rewrites the key anyway.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

func reportKey(areaID string) string {
	return fmt.Sprintf("reconciliation:area:%s", areaID)
}

func (s *RedisStore) Save(ctx context.Context, report *AreaReport) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	if err := s.client.Set(ctx, reportKey(report.AreaID), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing report for area %s: %w", report.AreaID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, areaID string) (*AreaReport, error) {
	value, err := s.client.Get(ctx, reportKey(areaID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("loading report for area %s: %w", areaID, err)
	}

	var report AreaReport
	if err := json.Unmarshal(value, &report); err != nil {
		return nil, fmt.Errorf("unmarshalling report for area %s: %w", areaID, err)
	}
	return &report, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
