package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/matchwatch/matchwatch/internal/infrastructure/repository/memory"
	"github.com/matchwatch/matchwatch/internal/platform/logging"
	"github.com/matchwatch/matchwatch/internal/usecase"
)

func newTestRouter(t *testing.T) (http.Handler, matchbatch.Repository) {
	t.Helper()

	repo := memory.NewBatchRepository()
	scan := usecase.NewPatternScanService(repo, 2)
	handler := NewHandler(
		usecase.NewBatchService(repo),
		usecase.NewQueryService(repo, scan),
		logging.NewNop(),
	)
	return NewRouter(handler, logging.NewNop(), []string{"*"}), repo
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	data, _ := envelope["data"].(map[string]any)
	return data
}

func TestIngestBatch_CreatesThenReplaces(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := `{
		"season": "2024", "trn": "1", "week": "3",
		"allMatches": [
			{"home": "arsenal", "visitor": "chelsea", "homeScore": "2", "awayScore": 1.0}
		]
	}`
	rec := doJSON(t, router, http.MethodPost, "/v1/leagues/English/batches", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["batchId"] != "english-2024-1-3" {
		t.Fatalf("unexpected batchId: %v", data["batchId"])
	}
	if data["created"] != true {
		t.Fatalf("first ingest must report created=true")
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/leagues/English/batches", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("replacement must answer 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["created"] != false {
		t.Fatalf("replacement must report created=false")
	}
}

func TestIngestBatch_UnparsableScoreDefaultsToZero(t *testing.T) {
	router, repo := newTestRouter(t)

	payload := `{
		"season": "2024", "tournament": "1", "week": "3",
		"matches": [{"homeTeam": "A", "awayTeam": "B", "homeScore": "n/a", "awayScore": 4}]
	}`
	rec := doJSON(t, router, http.MethodPost, "/v1/leagues/english/batches", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, found, err := repo.GetByID(context.Background(), "english", "english-2024-1-3")
	if err != nil || !found {
		t.Fatalf("stored batch missing: found=%v err=%v", found, err)
	}
	if stored.Matches[0].HomeScore != 0 || stored.Matches[0].AwayScore != 4 {
		t.Fatalf("unexpected scores: %+v", stored.Matches[0])
	}
}

func TestIngestBatch_RejectsEmptyMatchList(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/leagues/english/batches",
		`{"season": "2024", "tournament": "1", "week": "3", "matches": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryBatches_FullyQualifiedReturnsAlerts(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{
		"season": "%s", "tournament": "1", "week": "3",
		"matches": [
			{"homeTeam": "ARSENAL", "awayTeam": "CHELSEA", "homeScore": 2, "awayScore": 1},
			{"homeTeam": "SPURS", "awayTeam": "EVERTON", "homeScore": 0, "awayScore": 0}
		]
	}`
	for _, season := range []string{"2023", "2024"} {
		rec := doJSON(t, router, http.MethodPost, "/v1/leagues/english/batches", strings.Replace(body, "%s", season, 1))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %s: expected 201, got %d", season, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches?season=2024&trn=1&week=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	batch, _ := data["batch"].(map[string]any)
	if batch["id"] != "english-2024-1-3" {
		t.Fatalf("unexpected batch: %v", batch["id"])
	}
	alerts, _ := data["alerts"].([]any)
	if len(alerts) != 1 {
		t.Fatalf("expected one alert, got %v", data["alerts"])
	}
	alert, _ := alerts[0].(map[string]any)
	if alert["kind"] != "EXACT_SEQUENCE_MATCH" {
		t.Fatalf("unexpected alert kind: %v", alert["kind"])
	}
	if alert["batchId"] != "english-2023-1-3" {
		t.Fatalf("alert must reference the candidate batch, got %v", alert["batchId"])
	}
}

func TestQueryBatches_MissingFullyQualifiedIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches?season=2024&tournament=1&week=3", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestQueryBatches_PartialFilterListsBatches(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := `{
		"season": "2024", "tournament": "1", "week": "%s",
		"matches": [{"homeTeam": "A", "awayTeam": "B", "homeScore": 1, "awayScore": 0}]
	}`
	for _, week := range []string{"1", "2"} {
		rec := doJSON(t, router, http.MethodPost, "/v1/leagues/english/batches", strings.Replace(payload, "%s", week, 1))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed week %s: got %d", week, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches?season=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	items, _ := envelope["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected two batches, got %v", envelope["data"])
	}
	first, _ := items[0].(map[string]any)
	if first["week"] != "2" {
		t.Fatalf("batches must come back newest first, got %v", first["week"])
	}
}

func TestQueryBatches_MatchupHistoryMode(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/leagues/english/batches", `{
		"season": "2024", "tournament": "1", "week": "3",
		"matches": [
			{"homeTeam": "ARSENAL", "awayTeam": "CHELSEA", "homeScore": 2, "awayScore": 1},
			{"homeTeam": "CHELSEA", "awayTeam": "ARSENAL", "homeScore": 3, "awayScore": 3}
		]
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches?homeTeam=arsenal&awayTeam=chelsea", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	items, _ := envelope["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected the single ARSENAL-hosted record, got %v", envelope["data"])
	}
	record, _ := items[0].(map[string]any)
	if record["homeTeam"] != "ARSENAL" || record["awayTeam"] != "CHELSEA" {
		t.Fatalf("sides must not be interchangeable, got %v", record)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches?homeTeam=arsenal", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("lone homeTeam must be rejected, got %d", rec.Code)
	}
}

func TestGetBatchByID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/leagues/english/batches", `{
		"season": "2024", "tournament": "1", "week": "3",
		"matches": [{"homeTeam": "A", "awayTeam": "B", "homeScore": 1, "awayScore": 0}]
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches/english-2024-1-3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["id"] != "english-2024-1-3" {
		t.Fatalf("unexpected batch: %v", data["id"])
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/leagues/english/batches/english-1999-1-1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", data)
	}
}
