package sqlinline

const QUpsertAnalyticsDaily = `--sql 5511abc7-fc99-4d2c-a781-1d6b4145cb56
INSERT INTO analytics_daily (
    day, videos_requested, videos_generated, videos_failed, edits_requested, credits_spent
) VALUES (
    $1, $2, $3, $4, $5, $6
) ON CONFLICT (day) DO UPDATE SET
    videos_requested = analytics_daily.videos_requested + EXCLUDED.videos_requested,
    videos_generated = analytics_daily.videos_generated + EXCLUDED.videos_generated,
    videos_failed = analytics_daily.videos_failed + EXCLUDED.videos_failed,
    edits_requested = analytics_daily.edits_requested + EXCLUDED.edits_requested,
    credits_spent = analytics_daily.credits_spent + EXCLUDED.credits_spent,
    updated_at = NOW();
`

const QUpsertAnalyticsCountry = `--sql 9fd04c21-6b7e-4a5d-8a33-2e81b7c4f6a9
INSERT INTO analytics_country_daily (day, country, requests)
VALUES ($1, $2, $3)
ON CONFLICT (day, country) DO UPDATE SET
    requests = analytics_country_daily.requests + EXCLUDED.requests,
    updated_at = NOW();
`

const QSelectCountryRequests = `--sql c3a8f512-0d4b-4e7f-9b26-74d1e8a0c5b3
SELECT country, requests
FROM analytics_country_daily
WHERE day = $1
ORDER BY requests DESC, country ASC;
`

const QSelectAnalyticsSummary = `--sql 12751c4e-24f4-4c59-9e88-5865ae71ef51
SELECT day, videos_requested, videos_generated, videos_failed, edits_requested, credits_spent, created_at, updated_at
FROM analytics_daily
ORDER BY day DESC
LIMIT 1;
`
