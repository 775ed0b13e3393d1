package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leave/internal/calendar"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidayRepo struct {
	calls       int
	findInRange func(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error)
}

func (f *fakeHolidayRepo) FindInRange(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	f.calls++
	if f.findInRange != nil {
		return f.findInRange(ctx, from, to)
	}
	return nil, nil
}

func TestCalendarService_ChargeableDays(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour

	t.Run("cache hit does not touch the database", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeHolidayRepo{}
		svc := calendar.NewService(repo, rdb, ttl)

		mock.ExpectGet(calendar.HolidayYearKey(2024)).
			SetVal(`[{"date":"2024-03-06","description":"Nyepi"}]`)

		days, err := svc.ChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))

		assert.NoError(t, err)
		assert.Equal(t, 4, days)
		assert.Equal(t, 0, repo.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss loads the year and stores it", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeHolidayRepo{
			findInRange: func(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
				assert.Equal(t, day("2024-01-01"), from)
				assert.Equal(t, day("2024-12-31"), to)
				return []calendar.Holiday{{Date: day("2024-03-06"), Description: "Nyepi"}}, nil
			},
		}
		svc := calendar.NewService(repo, rdb, ttl)

		mock.ExpectGet(calendar.HolidayYearKey(2024)).RedisNil()
		mock.ExpectSet(
			calendar.HolidayYearKey(2024),
			[]byte(`[{"date":"2024-03-06","description":"Nyepi"}]`),
			ttl,
		).SetVal("OK")

		days, err := svc.ChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))

		assert.NoError(t, err)
		assert.Equal(t, 4, days)
		assert.Equal(t, 1, repo.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure falls back to the database", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeHolidayRepo{}
		svc := calendar.NewService(repo, rdb, ttl)

		mock.ExpectGet(calendar.HolidayYearKey(2024)).SetErr(errors.New("connection refused"))
		mock.ExpectSet(calendar.HolidayYearKey(2024), []byte(`[]`), ttl).SetVal("OK")

		days, err := svc.ChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))

		assert.NoError(t, err)
		assert.Equal(t, 5, days)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("range across new year reads both years", func(t *testing.T) {
		repo := &fakeHolidayRepo{
			findInRange: func(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
				if from.Year() == 2025 {
					return []calendar.Holiday{{Date: day("2025-01-01")}}, nil
				}
				return []calendar.Holiday{{Date: day("2024-12-25")}, {Date: day("2024-12-31")}}, nil
			},
		}
		svc := calendar.NewService(repo, nil, ttl)

		holidays, err := svc.HolidaysInRange(ctx, day("2024-12-30"), day("2025-01-03"))
		assert.NoError(t, err)
		assert.Len(t, holidays, 2)

		// Mon 30, Tue 31 (holiday), Wed 1 (holiday), Thu 2, Fri 3
		days, err := svc.ChargeableDays(ctx, day("2024-12-30"), day("2025-01-03"))
		assert.NoError(t, err)
		assert.Equal(t, 3, days)
	})

	t.Run("negative database error", func(t *testing.T) {
		repo := &fakeHolidayRepo{
			findInRange: func(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
				return nil, errors.New("db down")
			},
		}
		svc := calendar.NewService(repo, nil, ttl)

		_, err := svc.ChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))
		assert.Error(t, err)
	})
}

func TestCalendarService_FreshChargeableDays(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour

	t.Run("success stale cached year is ignored and rewritten", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })

		require.NoError(t, mr.Set(calendar.HolidayYearKey(2024), `[]`))
		repo := &fakeHolidayRepo{
			findInRange: func(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
				return []calendar.Holiday{{Date: day("2024-03-06"), Description: "Nyepi"}}, nil
			},
		}
		svc := calendar.NewService(repo, rdb, ttl)

		cached, err := svc.ChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))
		require.NoError(t, err)
		assert.Equal(t, 5, cached)

		days, err := svc.FreshChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))

		assert.NoError(t, err)
		assert.Equal(t, 4, days)
		assert.Equal(t, 1, repo.calls)
		stored, err := mr.Get(calendar.HolidayYearKey(2024))
		require.NoError(t, err)
		assert.JSONEq(t, `[{"date":"2024-03-06","description":"Nyepi"}]`, stored)
	})

	t.Run("negative database failure is returned", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := &fakeHolidayRepo{
			findInRange: func(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
				return nil, errors.New("db down")
			},
		}
		svc := calendar.NewService(repo, rdb, ttl)

		_, err := svc.FreshChargeableDays(ctx, day("2024-03-04"), day("2024-03-08"))

		assert.EqualError(t, err, "db down")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
