package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	"github.com/matchwatch/matchwatch/internal/domain/pattern"
	"github.com/matchwatch/matchwatch/internal/usecase"
)

// flexibleScore tolerates the score encodings seen in historical payloads:
// bare integers, floats, and quoted numbers. Anything unparsable decodes
// to 0 rather than failing the whole batch.
type flexibleScore int

func (s *flexibleScore) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	raw = strings.Trim(raw, `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}

	if value, err := strconv.Atoi(raw); err == nil {
		*s = flexibleScore(value)
		return nil
	}
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		*s = flexibleScore(int(value))
		return nil
	}

	*s = 0
	return nil
}

// ingestMatchRecord carries both naming conventions for each side. The
// resolution precedence is homeTeam over home, awayTeam over away over
// visitor, applied once here and never deeper in the pipeline.
type ingestMatchRecord struct {
	HomeTeam  string        `json:"homeTeam"`
	Home      string        `json:"home"`
	AwayTeam  string        `json:"awayTeam"`
	Away      string        `json:"away"`
	Visitor   string        `json:"visitor"`
	HomeScore flexibleScore `json:"homeScore"`
	AwayScore flexibleScore `json:"awayScore"`
}

func (r ingestMatchRecord) resolve() matchbatch.MatchRecord {
	home := firstNonEmpty(r.HomeTeam, r.Home)
	away := firstNonEmpty(r.AwayTeam, r.Away, r.Visitor)
	return matchbatch.MatchRecord{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: int(r.HomeScore),
		AwayScore: int(r.AwayScore),
	}
}

type ingestBatchRequest struct {
	Season     string              `json:"season"`
	Tournament string              `json:"tournament"`
	Trn        string              `json:"trn"`
	Week       string              `json:"week"`
	Matches    []ingestMatchRecord `json:"matches"`
	AllMatches []ingestMatchRecord `json:"allMatches"`
}

// resolvedIngestRequest is the canonical form after alias resolution;
// validation runs against this, not the wire shape.
type resolvedIngestRequest struct {
	Season     string `validate:"required"`
	Tournament string `validate:"required"`
	Week       string `validate:"required"`
	Matches    []matchbatch.MatchRecord
}

func (req ingestBatchRequest) resolve() resolvedIngestRequest {
	records := req.Matches
	if len(records) == 0 {
		records = req.AllMatches
	}

	matches := make([]matchbatch.MatchRecord, 0, len(records))
	for _, record := range records {
		matches = append(matches, record.resolve())
	}

	return resolvedIngestRequest{
		Season:     strings.TrimSpace(req.Season),
		Tournament: firstNonEmpty(req.Tournament, req.Trn),
		Week:       strings.TrimSpace(req.Week),
		Matches:    matches,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

type matchDTO struct {
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}

type batchDTO struct {
	ID         string     `json:"id"`
	League     string     `json:"league"`
	Season     string     `json:"season"`
	Tournament string     `json:"tournament"`
	Week       string     `json:"week"`
	Matches    []matchDTO `json:"matches"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type alertDTO struct {
	Kind       string `json:"kind"`
	BatchID    string `json:"batchId"`
	Season     string `json:"season"`
	Tournament string `json:"tournament"`
	Week       string `json:"week"`
}

type batchWithAlertsDTO struct {
	Batch  batchDTO   `json:"batch"`
	Alerts []alertDTO `json:"alerts"`
}

type ingestResultDTO struct {
	BatchID string `json:"batchId"`
	Created bool   `json:"created"`
}

type matchupRecordDTO struct {
	HomeTeam   string `json:"homeTeam"`
	AwayTeam   string `json:"awayTeam"`
	HomeScore  int    `json:"homeScore"`
	AwayScore  int    `json:"awayScore"`
	Season     string `json:"season"`
	Tournament string `json:"tournament"`
	Week       string `json:"week"`
}

func batchToDTO(batch matchbatch.MatchBatch) batchDTO {
	matches := make([]matchDTO, 0, len(batch.Matches))
	for _, match := range batch.Matches {
		matches = append(matches, matchDTO{
			HomeTeam:  match.HomeTeam,
			AwayTeam:  match.AwayTeam,
			HomeScore: match.HomeScore,
			AwayScore: match.AwayScore,
		})
	}
	return batchDTO{
		ID:         batch.ID,
		League:     batch.League,
		Season:     batch.Season,
		Tournament: batch.Tournament,
		Week:       batch.Week,
		Matches:    matches,
		UpdatedAt:  batch.UpdatedAt,
	}
}

func alertsToDTO(alerts []pattern.Alert) []alertDTO {
	out := make([]alertDTO, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, alertDTO{
			Kind:       string(alert.Kind),
			BatchID:    alert.BatchID,
			Season:     alert.Season,
			Tournament: alert.Tournament,
			Week:       alert.Week,
		})
	}
	return out
}

func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestBatch")
	defer span.End()

	league := strings.TrimSpace(r.PathValue("league"))

	var req ingestBatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}

	resolved := req.resolve()
	if err := h.validateRequest(ctx, resolved); err != nil {
		writeError(ctx, w, err)
		return
	}

	batch, created, err := h.batchService.Ingest(ctx, usecase.IngestBatchInput{
		League:     league,
		Season:     resolved.Season,
		Tournament: resolved.Tournament,
		Week:       resolved.Week,
		Matches:    resolved.Matches,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingest batch failed", "league", league, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, ingestResultDTO{BatchID: batch.ID, Created: created})
}

func (h *Handler) QueryBatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QueryBatches")
	defer span.End()

	league := strings.TrimSpace(r.PathValue("league"))
	params := r.URL.Query()

	homeTeam := strings.TrimSpace(params.Get("homeTeam"))
	awayTeam := strings.TrimSpace(params.Get("awayTeam"))
	if homeTeam != "" || awayTeam != "" {
		if homeTeam == "" || awayTeam == "" {
			writeError(ctx, w, fmt.Errorf("%w: matchup lookup needs both homeTeam and awayTeam", usecase.ErrInvalidInput))
			return
		}

		records, err := h.queryService.MatchupHistory(ctx, league, homeTeam, awayTeam)
		if err != nil {
			h.logger.WarnContext(ctx, "matchup history failed", "league", league, "error", err)
			writeError(ctx, w, err)
			return
		}

		items := make([]matchupRecordDTO, 0, len(records))
		for _, record := range records {
			items = append(items, matchupRecordDTO{
				HomeTeam:   record.HomeTeam,
				AwayTeam:   record.AwayTeam,
				HomeScore:  record.HomeScore,
				AwayScore:  record.AwayScore,
				Season:     record.Season,
				Tournament: record.Tournament,
				Week:       record.Week,
			})
		}
		writeSuccess(ctx, w, http.StatusOK, items)
		return
	}

	filter := matchbatch.Filter{
		Season:     strings.TrimSpace(params.Get("season")),
		Tournament: firstNonEmpty(params.Get("tournament"), params.Get("trn")),
		Week:       strings.TrimSpace(params.Get("week")),
	}

	if filter.FullyQualified() {
		result, err := h.queryService.GetWithAlerts(ctx, league, filter)
		if err != nil {
			h.logger.WarnContext(ctx, "get batch with alerts failed", "league", league, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, batchWithAlertsDTO{
			Batch:  batchToDTO(result.Batch),
			Alerts: alertsToDTO(result.Alerts),
		})
		return
	}

	batches, err := h.queryService.Query(ctx, league, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "query batches failed", "league", league, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]batchDTO, 0, len(batches))
	for _, batch := range batches {
		items = append(items, batchToDTO(batch))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetBatchByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBatchByID")
	defer span.End()

	league := strings.TrimSpace(r.PathValue("league"))
	batchID := strings.TrimSpace(r.PathValue("batchID"))

	batch, err := h.queryService.GetByID(ctx, league, batchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get batch failed", "league", league, "batch_id", batchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, batchToDTO(batch))
}
