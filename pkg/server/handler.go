package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikeboe/blog-post-creator/pkg/blog"
)

type Handler struct {
	Jobs    Jobs
	MCP     *MCPServer
	Metrics *Metrics
}

func NewHandler(jobs Jobs, metrics *Metrics) *Handler {
	return &Handler{Jobs: jobs, MCP: NewMCPServer(jobs), Metrics: metrics}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	mcpHandler := gin.WrapH(h.MCP.Handler())
	r.GET("/mcp", mcpHandler)
	r.POST("/mcp", mcpHandler)
	r.DELETE("/mcp", mcpHandler)

	api := r.Group("/api")
	{
		api.POST("/posts", h.createJob)
		api.GET("/posts", h.listJobs)
		api.GET("/posts/:id", h.getJob)
		api.GET("/posts/:id/logs", h.getJobLogs)
		api.GET("/posts/:id/preview", h.previewPost)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.Jobs.CreateJob(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.Jobs.ListJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if jobs == nil {
		jobs = []Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) getJob(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) getJobLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	logs, err := h.Jobs.GetJobLogs(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}

// previewPost returns the finished markdown with the cover embedded as a
// data URI, so it renders outside the output directory.
func (h *Handler) previewPost(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}
	if job.Status != StatusCompleted || job.Markdown == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "post is not ready", "status": job.Status})
		return
	}

	markdown, err := blog.InlineCover(*job.Markdown)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}

func (h *Handler) lookupJob(c *gin.Context) (*Job, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return nil, false
	}

	job, err := h.Jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return job, true
}
