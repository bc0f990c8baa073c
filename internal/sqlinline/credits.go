package sqlinline

const QSelectCredits = `--sql 72f9e815-a390-4a95-b620-4293e61736d1
SELECT credits
FROM users
WHERE id = $1;
`

const QGrantCredits = `--sql 6e861d73-a36c-4e9b-bd38-92519cde15db
INSERT INTO users (id, credits)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE
SET credits = users.credits + EXCLUDED.credits,
    updated_at = NOW();
`
