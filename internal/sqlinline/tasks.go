package sqlinline

// QEnqueueVideoTask consumes the credit cost from the owner's balance and
// inserts the PENDING task in one statement. Yields no rows when the
// balance is insufficient.
const QEnqueueVideoTask = `--sql 7afb2eb3-6114-421d-bb62-3ed8ff053f00
WITH spend AS (
  UPDATE users
  SET credits = credits - $6,
      updated_at = NOW()
  WHERE id = $1 AND credits >= $6
  RETURNING credits
),
inserted AS (
  INSERT INTO video_tasks (id, project_id, task_id, status, progress, video_settings, credits_cost, is_edited, original_task_id)
  SELECT $2, $3, $4, 'PENDING', 0, $5::jsonb, $6, $7, NULLIF($8, '')
  WHERE EXISTS (SELECT 1 FROM spend)
  RETURNING id
)
SELECT spend.credits
FROM spend, inserted;
`

const taskColumns = `id, project_id, COALESCE(task_id, ''), status, progress,
       COALESCE(video_url, ''), COALESCE(thumbnail_url, ''),
       video_settings, credits_cost, COALESCE(error_message, ''),
       is_edited, COALESCE(original_task_id, ''),
       created_at, updated_at`

const QSelectTask = `--sql 95467d67-7a4d-49a2-8be3-a0712fd78565
SELECT ` + taskColumns + `
FROM video_tasks
WHERE id = $1;
`

const QListTasksByProject = `--sql 2b890855-9576-45e5-86ce-1e23ce33c5e7
SELECT ` + taskColumns + `
FROM video_tasks
WHERE project_id = $1
ORDER BY created_at ASC;
`

// QClaimPendingTask flips the oldest PENDING task to PROCESSING. SKIP
// LOCKED keeps concurrent workers from claiming the same row.
const QClaimPendingTask = `--sql 746ddf5a-e9d2-4902-b9b3-d053202fe2ab
UPDATE video_tasks
SET status = 'PROCESSING',
    updated_at = NOW()
WHERE id = (
  SELECT id
  FROM video_tasks
  WHERE status = 'PENDING'
  ORDER BY created_at
  LIMIT 1
  FOR UPDATE SKIP LOCKED
)
RETURNING ` + taskColumns + `;
`

const QSetExternalTask = `--sql 5ab3e2b0-13aa-4a98-bfb4-c102c7636930
UPDATE video_tasks
SET task_id = $2,
    updated_at = NOW()
WHERE id = $1;
`

const QUpdateTaskProgress = `--sql 870aea19-ffe7-43f9-9c8d-949a57b46694
UPDATE video_tasks
SET progress = GREATEST(progress, $2),
    updated_at = NOW()
WHERE id = $1 AND status = 'PROCESSING';
`

const QCompleteTask = `--sql 658f6f5d-381a-45a7-a054-bb23cebc5f99
UPDATE video_tasks
SET status = 'COMPLETED',
    progress = 100,
    video_url = $2,
    thumbnail_url = NULLIF($3, ''),
    updated_at = NOW()
WHERE id = $1 AND status = 'PROCESSING';
`

const QFailTask = `--sql ed97bed7-a1b2-4b7c-898c-14574e3c79ca
UPDATE video_tasks
SET status = 'FAILED',
    error_message = $2,
    updated_at = NOW()
WHERE id = $1 AND status = 'PROCESSING';
`

const QTaskTerminalCounts = `--sql 706ea646-4c01-4f4d-be41-635fca4b4761
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'COMPLETED'),
       COUNT(*) FILTER (WHERE status = 'FAILED')
FROM video_tasks
WHERE project_id = $1;
`
