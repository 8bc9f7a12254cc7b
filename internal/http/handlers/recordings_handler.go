// Recording HTTP handlers.
//
// This file exposes the call analysis endpoints:
//   - POST   /recordings        (upload audio and run the pipeline)
//   - POST   /demo              (generate a sample result)
//   - GET    /recordings        (history, paginated, ETag support)
//   - GET    /recordings/{id}   (result view)
//   - DELETE /recordings        (clear every record)
//   - GET    /pipeline          (current job state)
//
// Handlers validate transport input, call the services, and map service
// errors onto ErrorResponse codes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-call-analysis/internal/domain"
	"github.com/tbourn/go-call-analysis/internal/http/middleware"
	"github.com/tbourn/go-call-analysis/internal/services"
	"github.com/tbourn/go-call-analysis/internal/utils"
)

//
// Service contracts (context-aware)
//

// PipelineService runs uploads through transcription and analysis.
type PipelineService interface {
	Run(ctx context.Context, up services.Upload) (services.Outcome, error)
	Status() services.Status
}

// DemoService produces a complete sample result.
type DemoService interface {
	Generate(ctx context.Context) (services.Outcome, error)
}

// ResultService reads finished recordings.
type ResultService interface {
	Load(ctx context.Context, recordingID string) (*services.Result, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Recording, int64)
	Clear(ctx context.Context)
}

// RecordingStats feeds the history ETag.
type RecordingStats interface {
	RecordingsStats(ctx context.Context) (count, linked int64, newest *time.Time)
}

// IdempotencyRecorder stores the recording produced for an
// (clientID, scope, key) triple so a retry can be replayed.
type IdempotencyRecorder func(ctx context.Context, clientID, scope, key, recordingID string) error

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. Stats and Remember are optional.
type Handlers struct {
	pipeline PipelineService
	demo     DemoService
	results  ResultService

	Stats          RecordingStats
	Remember       IdempotencyRecorder
	MaxUploadBytes int64
}

// New constructs Handlers bound to the given services.
func New(pipeline PipelineService, demo DemoService, results ResultService) *Handlers {
	return &Handlers{pipeline: pipeline, demo: demo, results: results}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRecordingsResponse wraps a page of recordings, newest first.
type ListRecordingsResponse struct {
	Recordings []domain.Recording `json:"recordings"`
	Pagination Pagination         `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failPipeline maps a pipeline error onto the response envelope.
func failPipeline(c *gin.Context, err error) {
	var se *services.StageError
	switch {
	case errors.Is(err, services.ErrInvalidFileType):
		fail(c, http.StatusBadRequest, ErrCodeInvalidFileType, err.Error())
	case errors.Is(err, services.ErrEmptyUpload):
		fail(c, http.StatusBadRequest, ErrCodeEmptyUpload, err.Error())
	case errors.Is(err, services.ErrPipelineBusy):
		fail(c, http.StatusConflict, ErrCodePipelineBusy, err.Error())
	case errors.As(err, &se):
		failWith(c, http.StatusBadGateway, ErrorResponse{
			Code:    ErrCodeProcessingFailed,
			Message: services.FailureMessage,
			Stage:   string(se.Stage),
		})
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, services.FailureMessage)
	}
}

// notFoundMessage is the notification shown before redirecting home.
func notFoundMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrRecordingNotFound):
		return "Recording not found", true
	case errors.Is(err, services.ErrTranscriptNotFound):
		return "Transcript not found", true
	case errors.Is(err, services.ErrAnalysisNotFound):
		return "Analysis not found", true
	}
	return "", false
}

//
// Handlers
//

// UploadRecording godoc
// @ID          uploadRecording
// @Summary     Upload a call recording
// @Description Stores the audio, transcribes it, analyzes the transcript and persists all three records. Supports Idempotency-Key replay.
// @Tags        Recordings
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       file             formData  file    true   "Audio file (audio/*)"
// @Param       Idempotency-Key  header    string  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
//
// @Success     201  {object}  services.Outcome
// @Header      201  {string}  Idempotency-Replayed  "true when served from an earlier request"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid or empty file"
// @Failure     409  {object}  handlers.ErrorResponse  "Another recording is being processed"
// @Failure     413  {object}  handlers.ErrorResponse  "Upload too large"
// @Failure     502  {object}  handlers.ErrorResponse  "Transcription or analysis failed"
// @Router      /recordings [post]
func (h *Handlers) UploadRecording(c *gin.Context) {
	ctx := c.Request.Context()

	if id, replay := middleware.ReplayOf(c); replay {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusCreated, services.Outcome{
			RecordingID: id,
			Location:    services.ResultLocation(id),
			State:       services.StateDone,
		})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeUploadTooLarge, "upload too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"file\" is required")
		return
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeUploadTooLarge, "upload too large")
		return
	}

	up := services.Upload{FileName: fh.Filename, ContentType: fh.Header.Get("Content-Type")}
	// Reject non-audio before reading the body.
	if err := services.CheckContentType(up.ContentType); err != nil {
		failPipeline(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read upload")
		return
	}
	up.Data, err = io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read upload")
		return
	}

	out, err := h.pipeline.Run(ctx, up)
	if err != nil {
		failPipeline(c, err)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.Remember != nil {
		if err := h.Remember(ctx, middleware.ClientID(c), middleware.IdempotencyScope(c), key, out.RecordingID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("recording_id", out.RecordingID).Msg("idempotency record not stored")
		}
	}

	c.Header("Location", out.Location)
	ok(c, http.StatusCreated, out)
}

// CreateDemo godoc
// @ID          createDemo
// @Summary     Generate a demo result
// @Description Creates a sample recording, transcript and analysis without calling any provider.
// @Tags        Recordings
// @Produce     json
// @Success     201  {object}  services.Outcome
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /demo [post]
func (h *Handlers) CreateDemo(c *gin.Context) {
	out, err := h.demo.Generate(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDemoFailed, "Error generating demo. Please try again.")
		return
	}
	c.Header("Location", out.Location)
	ok(c, http.StatusCreated, out)
}

// ListRecordings godoc
// @ID          listRecordings
// @Summary     List recordings (paginated)
// @Description Returns recordings newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Recordings
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"recordings:3:3:1714550400:p1:s20\")
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListRecordingsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Router      /recordings [get]
func (h *Handlers) ListRecordings(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	if h.Stats != nil {
		count, linked, newest := h.Stats.RecordingsStats(ctx)
		var ts int64
		if newest != nil {
			ts = newest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"recordings:%d:%d:%d:p%d:s%d"`, count, linked, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total := h.results.ListPage(ctx, page, pageSize)
	if items == nil {
		items = []domain.Recording{}
	}
	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListRecordingsResponse{
		Recordings: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetRecording godoc
// @ID          getRecording
// @Summary     Result view for a recording
// @Description Returns the recording, its transcript and analysis, the highlighted transcript blocks and the dashboard. Missing records answer 404 with a redirect to "/".
// @Tags        Recordings
// @Produce     json
// @Param       id   path      string  true  "Recording ID"
// @Success     200  {object}  services.Result
// @Failure     404  {object}  handlers.ErrorResponse  "Recording, transcript or analysis not found"
// @Router      /recordings/{id} [get]
func (h *Handlers) GetRecording(c *gin.Context) {
	res, err := h.results.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		if msg, missing := notFoundMessage(err); missing {
			failWith(c, http.StatusNotFound, ErrorResponse{Code: ErrCodeNotFound, Message: msg, Redirect: "/"})
			return
		}
		failWith(c, http.StatusInternalServerError, ErrorResponse{
			Code:     ErrCodeInternal,
			Message:  "Failed to load analysis data",
			Redirect: "/",
		})
		return
	}
	ok(c, http.StatusOK, res)
}

// ClearRecordings godoc
// @ID          clearRecordings
// @Summary     Delete all records
// @Description Removes every recording, transcript and analysis.
// @Tags        Recordings
// @Success     204  {string} string "No Content"
// @Router      /recordings [delete]
func (h *Handlers) ClearRecordings(c *gin.Context) {
	h.results.Clear(c.Request.Context())
	noContent(c)
}

// GetPipelineStatus godoc
// @ID          getPipelineStatus
// @Summary     Current pipeline job
// @Description Returns the state of the running (or last) upload job.
// @Tags        Pipeline
// @Produce     json
// @Success     200  {object}  services.Status
// @Router      /pipeline [get]
func (h *Handlers) GetPipelineStatus(c *gin.Context) {
	ok(c, http.StatusOK, h.pipeline.Status())
}
