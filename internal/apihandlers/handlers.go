package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vodworks/internal/app"
	"vodworks/internal/models"
	"vodworks/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(appInstance *app.App) *APIHandler {
	return &APIHandler{App: appInstance}
}

// JobResponse is the wire shape for a job in all job endpoints.
type JobResponse struct {
	ID           uuid.UUID `json:"id"`
	JobType      string    `json:"job_type"`
	SegmentID    string    `json:"segment_id"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toJobResponse(job *models.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		JobType:      string(job.JobType),
		SegmentID:    job.SegmentID,
		Status:       job.Status,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// WorkerStatusHandler reports whether the polling loop is currently running.
func (h *APIHandler) WorkerStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"active": h.App.Worker.IsActive()}})
}

// ListJobsHandler returns recent jobs, newest first.
func (h *APIHandler) ListJobsHandler(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			BadRequest(c, "invalid limit: "+l)
			return
		}
		limit = parsed
	}

	jobs, err := h.App.JobStore.ListJobs(c.Request.Context(), limit)
	if err != nil {
		Internal(c, fmt.Sprintf("ListJobsHandler: failed to list jobs: %v", err))
		return
	}

	resp := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJobResponse(job))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *APIHandler) GetJobHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid job id: "+c.Param("id"))
		return
	}

	job, err := h.App.JobStore.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "job not found: "+id.String())
			return
		}
		Internal(c, fmt.Sprintf("GetJobHandler: failed to get job: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toJobResponse(job)})
}

// EnqueueJobsRequest enqueues processing jobs for one segment. Omitting
// job_types enqueues the standard upload stage set.
type EnqueueJobsRequest struct {
	SegmentID string   `json:"segment_id"`
	JobTypes  []string `json:"job_types"`
}

func (h *APIHandler) EnqueueJobsHandler(c *gin.Context) {
	var req EnqueueJobsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.SegmentID == "" {
		BadRequest(c, "missing required field: segment_id")
		return
	}

	var jobs []*models.Job
	if len(req.JobTypes) == 0 {
		enqueued, err := h.App.EnqueueProcessing(c.Request.Context(), req.SegmentID)
		if err != nil {
			Internal(c, fmt.Sprintf("EnqueueJobsHandler: %v", err))
			return
		}
		jobs = enqueued
	} else {
		for _, raw := range req.JobTypes {
			jobType, err := models.ParseJobType(raw)
			if err != nil {
				BadRequest(c, err.Error())
				return
			}
			job, err := h.App.JobStore.EnqueueJob(c.Request.Context(), req.SegmentID, jobType)
			if err != nil {
				Internal(c, fmt.Sprintf("EnqueueJobsHandler: failed to enqueue %s job: %v", jobType, err))
				return
			}
			jobs = append(jobs, job)
		}
		h.App.Worker.Start()
	}

	resp := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJobResponse(job))
	}
	c.JSON(http.StatusAccepted, gin.H{"data": resp})
}
