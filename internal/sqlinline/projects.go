package sqlinline

const QInsertProject = `--sql a3f7268d-4db9-4aaa-8a09-b48677559f0d
INSERT INTO projects (id, owner_id, name, description, status)
VALUES ($1, $2, $3, $4, $5);
`

const QSelectProject = `--sql 3f027372-8312-45ea-a3d1-94129ec028b1
SELECT id, owner_id, name, description, status,
       COALESCE(video_subject, ''), COALESCE(video_script, ''),
       created_at, updated_at
FROM projects
WHERE id = $1 AND owner_id = $2;
`

const QListProjectsByOwner = `--sql 804e6cc2-ae2a-4748-838f-8dc2997336d5
SELECT id, owner_id, name, description, status,
       COALESCE(video_subject, ''), COALESCE(video_script, ''),
       created_at, updated_at
FROM projects
WHERE owner_id = $1
ORDER BY created_at DESC;
`

// QUpdateProjectMeta writes both fields verbatim. The handler merges
// absent patch fields before calling, so an empty description clears.
const QUpdateProjectMeta = `--sql 72562621-b3bc-4fce-9508-256cfa466fcd
UPDATE projects
SET name = $3,
    description = $4,
    updated_at = NOW()
WHERE id = $1 AND owner_id = $2;
`

const QUpdateProjectBrief = `--sql 0b14b772-5905-4165-8db2-b20e099f6e07
UPDATE projects
SET video_subject = NULLIF($2, ''),
    video_script = NULLIF($3, ''),
    updated_at = NOW()
WHERE id = $1;
`

const QUpdateProjectStatus = `--sql da5195cb-a603-4717-9e33-115607d8cdd0
UPDATE projects
SET status = $2,
    updated_at = NOW()
WHERE id = $1;
`

const QSelectProjectOwner = `--sql f1d9e7aa-2c3b-4b6f-9a57-08c1f9f3d2be
SELECT owner_id
FROM projects
WHERE id = $1;
`

// QCompleteProject only advances ACTIVE projects, so an archive that
// raced the worker wins.
const QCompleteProject = `--sql 6c4a1f0e-9d25-47e0-88a4-53f2b59f7ac1
UPDATE projects
SET status = 'COMPLETED',
    updated_at = NOW()
WHERE id = $1 AND status = 'ACTIVE';
`
