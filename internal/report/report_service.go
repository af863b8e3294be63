package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	KindQuarterlyHires  = "quarterly_hires"
	KindDepartmentHires = "department_hires"

	DefaultCacheTTL = 30 * time.Minute

	cachePrefix = "hrdata:report:"
)

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	QuarterlyHires(ctx context.Context, year int) (QuarterlyReport, error)
	DepartmentHires(ctx context.Context, year int) (DepartmentReport, error)
	Invalidate(ctx context.Context, years []int) error
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewService builds the report service. rdb may be nil, which disables
// caching; a non-positive ttl falls back to DefaultCacheTTL.
func NewService(repo Repository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: logger.Named("report.service"),
	}
}

func CacheKey(kind string, year int) string {
	return fmt.Sprintf("%s%s:%d", cachePrefix, kind, year)
}

func (s *service) QuarterlyHires(ctx context.Context, year int) (QuarterlyReport, error) {
	s.logger.Debug("quarterly hires report requested", zap.Int("year", year))

	return cached(ctx, s, CacheKey(KindQuarterlyHires, year), func() (QuarterlyReport, error) {
		counts, err := s.repo.QuarterlyHires(ctx, year)
		if err != nil {
			s.logger.Error("quarterly hires query failed", zap.Int("year", year), zap.Error(err))
			return QuarterlyReport{}, err
		}
		return Pivot(year, counts), nil
	})
}

func (s *service) DepartmentHires(ctx context.Context, year int) (DepartmentReport, error) {
	s.logger.Debug("department hires report requested", zap.Int("year", year))

	return cached(ctx, s, CacheKey(KindDepartmentHires, year), func() (DepartmentReport, error) {
		hires, err := s.repo.DepartmentHires(ctx, year)
		if err != nil {
			s.logger.Error("department hires query failed", zap.Int("year", year), zap.Error(err))
			return DepartmentReport{}, err
		}
		return AboveMean(year, hires), nil
	})
}

func (s *service) Invalidate(ctx context.Context, years []int) error {
	if s.rdb == nil {
		return nil
	}

	var keys []string
	if len(years) == 0 {
		iter := s.rdb.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan report cache: %w", err)
		}
	} else {
		for _, y := range years {
			keys = append(keys, CacheKey(KindQuarterlyHires, y), CacheKey(KindDepartmentHires, y))
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete report cache: %w", err)
	}
	s.logger.Info("report cache invalidated", zap.Ints("years", years), zap.Int("keys", len(keys)))
	return nil
}

// cached serves key from Redis when present and otherwise runs load once per
// key across concurrent callers.
func cached[T any](ctx context.Context, s *service, key string, load func() (T, error)) (T, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		out, err := load()
		if err != nil {
			return out, err
		}
		if s.rdb != nil {
			if data, err := json.Marshal(out); err == nil {
				if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
					s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Pivot turns per-quarter counts into one row per (department, job) with one
// column per quarter that has any hire. Missing cells are 0.
func Pivot(year int, counts []QuarterlyCount) QuarterlyReport {
	report := QuarterlyReport{Year: year, Quarters: []int{}, Rows: []QuarterlyRow{}}

	seen := map[int]bool{}
	for _, c := range counts {
		if !seen[c.Quarter] {
			seen[c.Quarter] = true
			report.Quarters = append(report.Quarters, c.Quarter)
		}
	}
	sort.Ints(report.Quarters)
	col := make(map[int]int, len(report.Quarters))
	for i, q := range report.Quarters {
		col[q] = i
	}

	type rowKey struct{ dept, job string }
	index := map[rowKey]int{}
	for _, c := range counts {
		k := rowKey{c.DepartmentName, c.JobTitle}
		i, ok := index[k]
		if !ok {
			i = len(report.Rows)
			index[k] = i
			report.Rows = append(report.Rows, QuarterlyRow{
				DepartmentName: c.DepartmentName,
				JobTitle:       c.JobTitle,
				Counts:         make([]int64, len(report.Quarters)),
			})
		}
		report.Rows[i].Counts[col[c.Quarter]] += c.Hired
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.DepartmentName != b.DepartmentName {
			return a.DepartmentName < b.DepartmentName
		}
		return a.JobTitle < b.JobTitle
	})
	return report
}

// AboveMean keeps the departments that hired strictly more than the mean of
// all departments, most hires first.
func AboveMean(year int, hires []DepartmentHire) DepartmentReport {
	report := DepartmentReport{Year: year, Departments: []DepartmentHire{}}
	if len(hires) == 0 {
		return report
	}

	var total int64
	for _, h := range hires {
		total += h.Hired
	}
	report.Mean = float64(total) / float64(len(hires))

	for _, h := range hires {
		if float64(h.Hired) > report.Mean {
			report.Departments = append(report.Departments, h)
		}
	}
	sort.SliceStable(report.Departments, func(i, j int) bool {
		return report.Departments[i].Hired > report.Departments[j].Hired
	})
	return report
}
