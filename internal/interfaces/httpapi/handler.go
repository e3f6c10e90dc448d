package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jr0senblum/honbasho/internal/usecase"
)

type Handler struct {
	rosterService  *usecase.RosterService
	resultsService *usecase.ResultsService
	prizeService   *usecase.PrizeService
	logger         *slog.Logger
	validator      *validator.Validate
}

func NewHandler(
	rosterService *usecase.RosterService,
	resultsService *usecase.ResultsService,
	prizeService *usecase.PrizeService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		rosterService:  rosterService,
		resultsService: resultsService,
		prizeService:   prizeService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListBasho(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBasho")
	defer span.End()

	var loaded *bool
	if raw := r.URL.Query().Get("loaded"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: loaded must be a boolean", usecase.ErrInvalidInput))
			return
		}
		loaded = &value
	}

	items, err := h.rosterService.ListBasho(ctx, loaded)
	if err != nil {
		h.logger.ErrorContext(ctx, "list basho failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]bashoDTO, 0, len(items))
	for _, b := range items {
		out = append(out, bashoDTO{
			ID:            b.ID,
			Name:          b.Name,
			City:          b.City,
			StartYear:     b.StartYear,
			StartMonth:    b.StartMonth,
			StartDay:      b.StartDay,
			LastUpdateDay: b.LastUpdateDay,
			BanzukeLoaded: b.BanzukeLoaded,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetBanzukeBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBanzukeBoard")
	defer span.End()

	bashoID, err := pathInt64(r, "bashoID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.rosterService.BanzukeBoard(ctx, bashoID)
	if err != nil {
		h.logger.WarnContext(ctx, "banzuke board failed", "basho_id", bashoID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]banzukeRowDTO, 0, len(board))
	for _, row := range board {
		out = append(out, banzukeRowDTO{
			RankNo:   row.RankNo,
			RankName: row.RankName,
			East:     row.East,
			West:     row.West,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) LoadBanzuke(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LoadBanzuke")
	defer span.End()

	bashoID, err := pathInt64(r, "bashoID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.rosterService.LoadBanzuke(ctx, bashoID); err != nil {
		h.logger.WarnContext(ctx, "banzuke load failed", "basho_id", bashoID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"bashoId": bashoID, "status": "loaded"})
}

func (h *Handler) ListBashoWinners(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBashoWinners")
	defer span.End()

	bashoID, err := pathInt64(r, "bashoID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	names, err := h.prizeService.BashoWinners(ctx, bashoID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list basho winners failed", "basho_id", bashoID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, awardsDTO{BashoID: bashoID, RingNames: names})
}

func (h *Handler) ListPrizeWinners(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPrizeWinners")
	defer span.End()

	bashoID, err := pathInt64(r, "bashoID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	names, err := h.prizeService.PrizeWinners(ctx, bashoID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list prize winners failed", "basho_id", bashoID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, awardsDTO{BashoID: bashoID, RingNames: names})
}

func (h *Handler) PreviewDayResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewDayResults")
	defer span.End()

	req := previewRequest{
		Year:  queryInt(r, "year"),
		Month: queryInt(r, "month"),
		Day:   queryInt(r, "day"),
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	bouts, err := h.resultsService.Preview(ctx, req.Year, req.Month, req.Day)
	if err != nil {
		h.logger.WarnContext(ctx, "preview failed",
			"year", req.Year, "month", req.Month, "day", req.Day, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]boutDTO, 0, len(bouts))
	for _, bout := range bouts {
		out = append(out, boutDTO{
			Winner:       bout.WinnerName,
			WinnerRecord: bout.WinnerRecord,
			Loser:        bout.LoserName,
			LoserRecord:  bout.LoserRecord,
			Technique:    bout.Technique,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) AdvanceDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdvanceDay")
	defer span.End()

	draftID, err := pathInt64(r, "draftID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := pathInt(r, "day")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.resultsService.AdvanceDay(ctx, draftID, day); err != nil {
		if errors.Is(err, usecase.ErrStaleDay) {
			writeSuccess(ctx, w, http.StatusOK, advanceDTO{DraftID: draftID, Day: day, Status: "noop"})
			return
		}
		h.logger.WarnContext(ctx, "advance day failed", "draft_id", draftID, "day", day, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, advanceDTO{DraftID: draftID, Day: day, Status: "advanced"})
}

func (h *Handler) GetDayResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDayResults")
	defer span.End()

	draftID, err := pathInt64(r, "draftID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := pathInt(r, "day")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.resultsService.DayResults(ctx, draftID, day)
	if err != nil {
		h.logger.WarnContext(ctx, "day results failed", "draft_id", draftID, "day", day, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]dayResultDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, dayResultDTO{
			RikishiID:      row.RikishiID,
			RingName:       row.RingName,
			RankNo:         row.RankNo,
			OpponentID:     row.OpponentID,
			OpponentRankNo: row.OpponentRankNo,
			Win:            row.Win,
			Loss:           row.Loss,
			Fusensho:       row.Fusensho,
			Points:         row.Points,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListDraftPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDraftPicks")
	defer span.End()

	draftID, err := pathInt64(r, "draftID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.resultsService.Picks(ctx, draftID)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]draftPickDTO, 0, len(picks))
	for _, pick := range picks {
		out = append(out, draftPickDTO{
			ID:            pick.ID,
			PlayerID:      pick.PlayerID,
			RikishiID:     pick.RikishiID,
			Wins:          pick.Wins,
			Losses:        pick.Losses,
			Points:        pick.Points,
			SpecialPrizes: pick.SpecialPrizes,
			BashoWinner:   pick.BashoWinner,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

type previewRequest struct {
	Year  int `validate:"gte=1900,lte=2200"`
	Month int `validate:"gte=1,lte=12"`
	Day   int `validate:"gte=1,lte=15"`
}

type bashoDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	City          string `json:"city"`
	StartYear     int    `json:"startYear"`
	StartMonth    int    `json:"startMonth"`
	StartDay      int    `json:"startDay"`
	LastUpdateDay int    `json:"lastUpdateDay"`
	BanzukeLoaded bool   `json:"banzukeLoaded"`
}

type banzukeRowDTO struct {
	RankNo   int    `json:"rankNo"`
	RankName string `json:"rankName"`
	East     string `json:"east,omitempty"`
	West     string `json:"west,omitempty"`
}

type boutDTO struct {
	Winner       string `json:"winner"`
	WinnerRecord string `json:"winnerRecord,omitempty"`
	Loser        string `json:"loser"`
	LoserRecord  string `json:"loserRecord,omitempty"`
	Technique    string `json:"technique,omitempty"`
}

type advanceDTO struct {
	DraftID int64  `json:"draftId"`
	Day     int    `json:"day"`
	Status  string `json:"status"`
}

type dayResultDTO struct {
	RikishiID      int64  `json:"rikishiId"`
	RingName       string `json:"ringName"`
	RankNo         int    `json:"rankNo"`
	OpponentID     int64  `json:"opponentId"`
	OpponentRankNo int    `json:"opponentRankNo"`
	Win            bool   `json:"win"`
	Loss           bool   `json:"loss"`
	Fusensho       bool   `json:"fusensho"`
	Points         int    `json:"points"`
}

type draftPickDTO struct {
	ID            int64 `json:"id"`
	PlayerID      int64 `json:"playerId"`
	RikishiID     int64 `json:"rikishiId"`
	Wins          int   `json:"wins"`
	Losses        int   `json:"losses"`
	Points        int   `json:"points"`
	SpecialPrizes int   `json:"specialPrizes"`
	BashoWinner   bool  `json:"bashoWinner"`
}

type awardsDTO struct {
	BashoID   int64    `json:"bashoId"`
	RingNames []string `json:"ringNames"`
}

func pathInt64(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := pathInt64(r, name)
	return int(value), err
}

func queryInt(r *http.Request, name string) int {
	value, _ := strconv.Atoi(r.URL.Query().Get(name))
	return value
}
