package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const HolidayYearKeyPrefix = "calendar:holidays:"

func HolidayYearKey(year int) string {
	return fmt.Sprintf("%s%d", HolidayYearKeyPrefix, year)
}

//go:generate mockgen -source=calendar_service.go -destination=mock/calendar_service_mock.go -package=mock
type Service interface {
	HolidaysInRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
	ChargeableDays(ctx context.Context, start, end time.Time) (int, error)
	// FreshChargeableDays reads holidays from the database, never the cache,
	// and refreshes the cached years it touched.
	FreshChargeableDays(ctx context.Context, start, end time.Time) (int, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	logger *zap.Logger
}

// NewService returns a calendar backed by repo. Holiday sets are cached per
// year in rdb for ttl when rdb is not nil.
func NewService(repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &service{
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		logger: l,
	}
}

type cachedHoliday struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (s *service) HolidaysInRange(ctx context.Context, start, end time.Time) ([]Holiday, error) {
	return s.holidaysInRange(ctx, start, end, false)
}

func (s *service) holidaysInRange(ctx context.Context, start, end time.Time, fresh bool) ([]Holiday, error) {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return nil, nil
	}

	var out []Holiday
	for year := start.Year(); year <= end.Year(); year++ {
		holidays, err := s.holidaysForYear(ctx, year, fresh)
		if err != nil {
			return nil, err
		}
		for _, h := range holidays {
			d := DateOf(h.Date)
			if d.Before(start) || d.After(end) {
				continue
			}
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *service) ChargeableDays(ctx context.Context, start, end time.Time) (int, error) {
	holidays, err := s.holidaysInRange(ctx, start, end, false)
	if err != nil {
		return 0, err
	}
	return ChargeableDays(start, end, holidays), nil
}

func (s *service) FreshChargeableDays(ctx context.Context, start, end time.Time) (int, error) {
	holidays, err := s.holidaysInRange(ctx, start, end, true)
	if err != nil {
		return 0, err
	}
	return ChargeableDays(start, end, holidays), nil
}

func (s *service) holidaysForYear(ctx context.Context, year int, fresh bool) ([]Holiday, error) {
	cacheKey := HolidayYearKey(year)

	if s.rdb != nil && !fresh {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			if holidays, decodeErr := decodeHolidays(cached); decodeErr == nil {
				return holidays, nil
			}
			s.logger.Warn("holiday cache entry unreadable", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("holiday cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

		holidays, err := s.repo.FindInRange(ctx, from, to)
		if err != nil {
			s.logger.Error("load holidays failed", zap.Int("year", year), zap.Error(err))
			return nil, err
		}

		if s.rdb != nil {
			if payload, err := encodeHolidays(holidays); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
					s.logger.Warn("holiday cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}

		return holidays, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]Holiday), nil
}

func encodeHolidays(holidays []Holiday) ([]byte, error) {
	rows := make([]cachedHoliday, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, cachedHoliday{
			Date:        DateOf(h.Date).Format(DateLayout),
			Description: h.Description,
		})
	}
	return json.Marshal(rows)
}

func decodeHolidays(payload string) ([]Holiday, error) {
	var rows []cachedHoliday
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, err
	}

	holidays := make([]Holiday, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, Holiday{Date: d, Description: r.Description})
	}
	return holidays, nil
}
