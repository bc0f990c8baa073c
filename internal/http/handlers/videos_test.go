package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"videoserver/internal/domain"
	"videoserver/internal/middleware"
)

func seedCompletedTask(store *memStore, id, projectID string, createdAt time.Time) *domain.VideoTask {
	settings, _ := domain.EncodeSettings(domain.Settings{
		Params: domain.VideoGenerationParams{
			Prompt:  "a city at dawn",
			Quality: domain.Quality1080p,
		},
	})
	task := &domain.VideoTask{
		ID:            id,
		ProjectID:     projectID,
		TaskID:        "ext-" + id,
		Status:        domain.TaskStatusCompleted,
		Progress:      100,
		VideoURL:      "https://cdn.example.com/" + id + ".mp4",
		ThumbnailURL:  "https://cdn.example.com/" + id + ".jpg",
		VideoSettings: settings,
		CreditsCost:   5,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	store.tasks[id] = task
	return task
}

func TestVideosGenerate_ConsumesCreditsAndActivates(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 12
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusDraft)

	body := `{"prompt":"a city at dawn","duration":20,"quality":"1080p","aspectRatio":"16:9","videoSubject":"city film","videoScript":"opening shot"}`
	rr := httptest.NewRecorder()
	app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", body, map[string]string{"project_id": "p1"}))

	if rr.Code != 202 {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
	var resp taskAcceptedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RemainingCredits != 7 {
		t.Fatalf("remainingCredits = %d, want 7", resp.RemainingCredits)
	}
	if resp.Task.Status != domain.TaskStatusPending || resp.Task.ProjectID != "p1" {
		t.Fatalf("unexpected task: %+v", resp.Task)
	}
	if resp.Task.CreditsCost != 5 {
		t.Fatalf("creditsCost = %d, want 5", resp.Task.CreditsCost)
	}
	if store.projects["p1"].Status != domain.ProjectStatusActive {
		t.Fatalf("project status = %s, want ACTIVE", store.projects["p1"].Status)
	}
	if store.projects["p1"].VideoSubject != "city film" || store.projects["p1"].VideoScript != "opening shot" {
		t.Fatalf("brief not recorded: %+v", store.projects["p1"])
	}

	settings, err := domain.DecodeSettings(resp.Task.VideoSettings)
	if err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.Params.Prompt != "a city at dawn" || settings.Params.Quality != domain.Quality1080p {
		t.Fatalf("settings lost params: %+v", settings.Params)
	}
	if settings.Script != "opening shot" {
		t.Fatalf("script not stamped into settings: %q", settings.Script)
	}
	if store.counters[domain.CounterVideosRequested] != 1 || store.counters[domain.CounterCreditsSpent] != 5 {
		t.Fatalf("analytics not recorded: %+v", store.counters)
	}
}

func TestVideosGenerate_KeepsEarlierScript(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 20
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusDraft)
	params := map[string]string{"project_id": "p1"}

	rr := httptest.NewRecorder()
	first := `{"prompt":"a city at dawn","quality":"720p","videoSubject":"city film","videoScript":"opening shot"}`
	app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", first, params))
	if rr.Code != 202 {
		t.Fatalf("first generate: status = %d: %s", rr.Code, rr.Body.String())
	}

	// A later generation naming only the subject must not wipe the script.
	rr = httptest.NewRecorder()
	second := `{"prompt":"a city at night","quality":"720p","videoSubject":"night film"}`
	app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", second, params))
	if rr.Code != 202 {
		t.Fatalf("second generate: status = %d: %s", rr.Code, rr.Body.String())
	}
	if store.projects["p1"].VideoSubject != "night film" {
		t.Fatalf("subject not updated: %q", store.projects["p1"].VideoSubject)
	}
	if store.projects["p1"].VideoScript != "opening shot" {
		t.Fatalf("script wiped by partial brief: %q", store.projects["p1"].VideoScript)
	}
}

func TestVideosGenerate_StampsLocaleAndCountsCountry(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 10
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusDraft)

	req := newRequest(t, "POST", "/v1/projects/p1/videos", "user-1",
		`{"prompt":"a city at dawn","quality":"720p"}`, map[string]string{"project_id": "p1"})
	ctx := context.WithValue(req.Context(), middleware.LocaleKey, "ja")
	ctx = middleware.ContextWithCountry(ctx, "jp")
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	app.VideosGenerate(rr, req)
	if rr.Code != 202 {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
	var resp taskAcceptedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	settings, err := domain.DecodeSettings(resp.Task.VideoSettings)
	if err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.Locale != "ja" {
		t.Fatalf("locale = %q, want ja", settings.Locale)
	}
	day := time.Now().UTC().Format("2006-01-02")
	if store.countries[day]["JP"] != 1 {
		t.Fatalf("country not counted: %+v", store.countries)
	}
}

func TestVideosGenerate_RejectsInvalidParams(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 100
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusDraft)
	params := map[string]string{"project_id": "p1"}

	cases := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"quality":"1080p"}`},
		{"unknown quality", `{"prompt":"x","quality":"480p"}`},
		{"unknown aspect ratio", `{"prompt":"x","quality":"720p","aspectRatio":"4:3"}`},
		{"negative duration", `{"prompt":"x","quality":"720p","duration":-1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", tc.body, params))
			if rr.Code != 400 {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestVideosGenerate_ZeroDurationAccepted(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 10
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusDraft)

	rr := httptest.NewRecorder()
	body := `{"prompt":"a city at dawn","duration":0,"quality":"720p"}`
	app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", body, map[string]string{"project_id": "p1"}))
	if rr.Code != 202 {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
}

func TestVideosGenerate_CreditsExhausted(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 3
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusDraft)

	rr := httptest.NewRecorder()
	body := `{"prompt":"a city at dawn","quality":"720p"}`
	app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", body, map[string]string{"project_id": "p1"}))
	if rr.Code != 402 {
		t.Fatalf("status = %d, want 402", rr.Code)
	}
	if store.credits["user-1"] != 3 {
		t.Fatalf("credits touched on refusal: %d", store.credits["user-1"])
	}
}

func TestVideosGenerate_ArchivedProjectRefuses(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 100
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusArchived)

	rr := httptest.NewRecorder()
	body := `{"prompt":"a city at dawn","quality":"720p"}`
	app.VideosGenerate(rr, newRequest(t, "POST", "/v1/projects/p1/videos", "user-1", body, map[string]string{"project_id": "p1"}))
	if rr.Code != 409 {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestVideosEdit_DerivesTask(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 10
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusActive)
	seedCompletedTask(store, "t1", "p1", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	body := `{"options":{"filter":"noir","trim":{"start":2,"end":18}}}`
	rr := httptest.NewRecorder()
	app.VideosEdit(rr, newRequest(t, "POST", "/v1/videos/t1/edit", "user-1", body, map[string]string{"video_id": "t1"}))

	if rr.Code != 202 {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
	var resp taskAcceptedResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Task.IsEdited || resp.Task.OriginalTaskID != "t1" {
		t.Fatalf("lineage fields missing: %+v", resp.Task)
	}
	if resp.Task.CreditsCost != 2 {
		t.Fatalf("creditsCost = %d, want edit cost 2", resp.Task.CreditsCost)
	}
	if resp.RemainingCredits != 8 {
		t.Fatalf("remainingCredits = %d, want 8", resp.RemainingCredits)
	}

	settings, err := domain.DecodeSettings(resp.Task.VideoSettings)
	if err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.Params.Prompt != "a city at dawn" {
		t.Fatalf("original params lost: %+v", settings.Params)
	}
	var opts map[string]any
	if err := json.Unmarshal(settings.Advanced, &opts); err != nil {
		t.Fatalf("decode advanced options: %v", err)
	}
	if opts["filter"] != "noir" {
		t.Fatalf("advanced options not merged: %+v", opts)
	}
	if store.counters[domain.CounterEditsRequested] != 1 {
		t.Fatalf("edit not counted: %+v", store.counters)
	}
}

func TestVideosEdit_RequiresCompletedOriginal(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 10
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusActive)
	task := seedCompletedTask(store, "t1", "p1", time.Now().UTC())
	task.Status = domain.TaskStatusProcessing
	task.VideoURL = ""

	rr := httptest.NewRecorder()
	app.VideosEdit(rr, newRequest(t, "POST", "/v1/videos/t1/edit", "user-1", `{"options":{}}`, map[string]string{"video_id": "t1"}))
	if rr.Code != 409 {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestVideoStatus_AttachesDenormalizedViews(t *testing.T) {
	store := newMemStore()
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusActive)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	seedCompletedTask(store, "t1", "p1", base)
	edit := seedCompletedTask(store, "t2", "p1", base.Add(time.Hour))
	edit.IsEdited = true
	edit.OriginalTaskID = "t1"

	rr := httptest.NewRecorder()
	app.VideoStatus(rr, newRequest(t, "GET", "/v1/videos/t1", "user-1", "", map[string]string{"video_id": "t1"}))
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got domain.VideoTask
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Project == nil || got.Project.ID != "p1" {
		t.Fatalf("project view missing: %+v", got.Project)
	}
	if len(got.Project.VideoTasks) != 0 {
		t.Fatalf("embedded project should stay shallow")
	}
	if len(got.EditedVersions) != 1 || got.EditedVersions[0].ID != "t2" {
		t.Fatalf("editedVersions = %+v", got.EditedVersions)
	}

	rr = httptest.NewRecorder()
	app.VideoStatus(rr, newRequest(t, "GET", "/v1/videos/t2", "user-1", "", map[string]string{"video_id": "t2"}))
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var gotEdit domain.VideoTask
	if err := json.NewDecoder(rr.Body).Decode(&gotEdit); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if gotEdit.EditedFrom == nil || gotEdit.EditedFrom.ID != "t1" {
		t.Fatalf("editedFrom missing: %+v", gotEdit.EditedFrom)
	}
}

func TestVideoLineage_ReturnsChain(t *testing.T) {
	store := newMemStore()
	app := newTestApp(store)
	seedProject(store, "p1", "user-1", domain.ProjectStatusActive)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	seedCompletedTask(store, "t1", "p1", base)
	first := seedCompletedTask(store, "t2", "p1", base.Add(time.Hour))
	first.IsEdited = true
	first.OriginalTaskID = "t1"
	second := seedCompletedTask(store, "t3", "p1", base.Add(2*time.Hour))
	second.IsEdited = true
	second.OriginalTaskID = "t2"

	rr := httptest.NewRecorder()
	app.VideoLineage(rr, newRequest(t, "GET", "/v1/videos/t3/lineage", "user-1", "", map[string]string{"video_id": "t3"}))
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Chain []domain.VideoTask `json:"chain"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Chain) != 3 || payload.Chain[0].ID != "t3" || payload.Chain[2].ID != "t1" {
		t.Fatalf("chain = %+v", payload.Chain)
	}
}

func TestStatsSummary(t *testing.T) {
	store := newMemStore()
	store.credits["user-1"] = 42
	store.counters[domain.CounterVideosRequested] = 9
	store.counters[domain.CounterVideosGenerated] = 7
	store.counters[domain.CounterVideosFailed] = 2
	day := time.Now().UTC().Format("2006-01-02")
	store.countries[day] = map[string]int{"ID": 6, "JP": 3}
	app := newTestApp(store)

	rr := httptest.NewRecorder()
	app.StatsSummary(rr, newRequest(t, "GET", "/v1/stats/summary", "user-1", "", nil))
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got struct {
		VideosRequested   int                   `json:"videosRequested"`
		VideosGenerated   int                   `json:"videosGenerated"`
		VideosFailed      int                   `json:"videosFailed"`
		CreditsBalance    int                   `json:"creditsBalance"`
		RequestsByCountry []domain.CountryCount `json:"requestsByCountry"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.VideosRequested != 9 || got.VideosGenerated != 7 || got.VideosFailed != 2 || got.CreditsBalance != 42 {
		t.Fatalf("summary = %+v", got)
	}
	if len(got.RequestsByCountry) != 2 || got.RequestsByCountry[0].Country != "ID" || got.RequestsByCountry[0].Requests != 6 {
		t.Fatalf("requestsByCountry = %+v", got.RequestsByCountry)
	}
}
