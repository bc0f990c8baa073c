package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"videoserver/internal/domain"
	"videoserver/internal/infra"
	"videoserver/internal/sqlinline"
)

// AnalyticsRepositoryPG implements domain.AnalyticsRepository over PostgreSQL.
type AnalyticsRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(sql infra.SQLExecutor) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{sql: sql}
}

// IncrementCounters upserts metrics for the provided day.
func (r *AnalyticsRepositoryPG) IncrementCounters(ctx context.Context, day string, counters map[string]int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertAnalyticsDaily,
		day,
		counters[domain.CounterVideosRequested],
		counters[domain.CounterVideosGenerated],
		counters[domain.CounterVideosFailed],
		counters[domain.CounterEditsRequested],
		counters[domain.CounterCreditsSpent],
	)
	return err
}

// IncrementCountry attributes generation requests to a country for the
// provided day.
func (r *AnalyticsRepositoryPG) IncrementCountry(ctx context.Context, day, country string, requests int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertAnalyticsCountry, day, country, requests)
	return err
}

// GetSummary returns the most recent daily aggregate.
func (r *AnalyticsRepositoryPG) GetSummary(ctx context.Context) (*domain.AnalyticsDaily, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAnalyticsSummary)
	var summary domain.AnalyticsDaily
	if err := row.Scan(
		&summary.Day,
		&summary.VideosRequested,
		&summary.VideosGenerated,
		&summary.VideosFailed,
		&summary.EditsRequested,
		&summary.CreditsSpent,
		&summary.CreatedAt,
		&summary.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// CountryRequests lists the per-country request counts for a day,
// busiest countries first.
func (r *AnalyticsRepositoryPG) CountryRequests(ctx context.Context, day string) ([]domain.CountryCount, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectCountryRequests, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []domain.CountryCount{}
	for rows.Next() {
		var c domain.CountryCount
		if err := rows.Scan(&c.Country, &c.Requests); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

var _ domain.AnalyticsRepository = (*AnalyticsRepositoryPG)(nil)
