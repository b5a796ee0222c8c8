package endpoint

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/validation"
)

// HeaderRunID returns the run ID of a synchronous order request.
const HeaderRunID = "X-Run-Id"

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
	// Timeout is a Go duration ("2s", "500ms"). Empty uses the default.
	Timeout string `json:"timeout"`
}

// StageView is the JSON form of a stage report.
type StageView struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunView is the JSON form of a run, live or settled.
type RunView struct {
	RunID      string               `json:"run_id"`
	Pipeline   string               `json:"pipeline,omitempty"`
	State      pipeline.State       `json:"state"`
	StagesRun  int                  `json:"stages_run"`
	DurationMs int64                `json:"duration_ms"`
	Result     any                  `json:"result,omitempty"`
	Error      *apperrors.ErrorBody `json:"error,omitempty"`
	Stages     []StageView          `json:"stages,omitempty"`
}

// NewRunView renders an outcome.
func NewRunView(out pipeline.Outcome) RunView {
	v := RunView{
		RunID:      out.RunID,
		Pipeline:   out.Pipeline,
		State:      out.State,
		StagesRun:  out.StagesRun,
		DurationMs: out.Duration.Milliseconds(),
		Result:     out.Value,
		Stages:     make([]StageView, 0, len(out.Reports)),
	}
	if appErr := out.AppError(); appErr != nil {
		body := appErr.ToResponse().Error
		v.Error = &body
	}
	for _, r := range out.Reports {
		sv := StageView{Index: r.Index, Name: r.Name, Status: r.Status, DurationMs: r.Duration.Milliseconds()}
		if r.Err != nil {
			sv.Error = r.Err.Error()
		}
		v.Stages = append(v.Stages, sv)
	}
	return v
}

func handleView(h *pipeline.Handle) RunView {
	if out, ok := h.Outcome(); ok {
		return NewRunView(out)
	}
	return RunView{RunID: h.ID(), State: h.State()}
}

// Runs serves the order pipeline over HTTP.
type Runs struct {
	pipeline       *pipeline.Pipeline
	tracker        *pipeline.Tracker
	defaultTimeout time.Duration
}

// NewRuns creates the handlers. defaultTimeout applies when a request does
// not name one; a non-positive value means no timeout.
func NewRuns(p *pipeline.Pipeline, tracker *pipeline.Tracker, defaultTimeout time.Duration) *Runs {
	return &Runs{pipeline: p, tracker: tracker, defaultTimeout: defaultTimeout}
}

// Register mounts the routes on r.
func (h *Runs) Register(r gin.IRouter) {
	r.POST("/orders", h.CreateOrder)
	r.POST("/orders/async", h.CreateOrderAsync)
	r.GET("/runs/:id", h.GetRun)
	r.DELETE("/runs/:id", h.CancelRun)
}

func (h *Runs) parse(c *gin.Context) (CreateOrderRequest, time.Duration, error) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, 0, apperrors.InvalidInput("body", err.Error())
	}
	if err := validation.Validate(req); err != nil {
		return req, 0, err
	}

	timeout := h.defaultTimeout
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			return req, 0, apperrors.InvalidInput("timeout", "must be a positive duration such as 2s")
		}
		timeout = d
	}
	return req, timeout, nil
}

// CreateOrder runs the pipeline and answers with its outcome. The run is
// tracked while in flight, so DELETE /runs/:id can cancel it; a client
// that disconnects cancels it too.
func (h *Runs) CreateOrder(c *gin.Context) {
	req, timeout, err := h.parse(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	run := h.pipeline.Start(c.Request.Context(), req.UserID, pipeline.WithTimeout(timeout))
	h.tracker.Track(run)
	c.Header(HeaderRunID, run.ID())

	out, err := run.Wait(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if appErr := out.AppError(); appErr != nil {
		RespondWithError(c, appErr)
		return
	}
	RespondOK(c, NewRunView(out))
}

// CreateOrderAsync starts a run that outlives the request and answers 202
// with its ID.
func (h *Runs) CreateOrderAsync(c *gin.Context) {
	req, timeout, err := h.parse(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	run := h.pipeline.Start(context.WithoutCancel(c.Request.Context()), req.UserID, pipeline.WithTimeout(timeout))
	h.tracker.Track(run)
	RespondAccepted(c, handleView(run))
}

// GetRun reports a run's state, with its outcome once settled.
func (h *Runs) GetRun(c *gin.Context) {
	run, ok := h.tracker.Get(c.Param("id"))
	if !ok {
		RespondWithError(c, apperrors.NotFound("run", c.Param("id")))
		return
	}
	RespondOK(c, handleView(run))
}

// CancelRun sets the run's signal. A run that already settled keeps its
// outcome.
func (h *Runs) CancelRun(c *gin.Context) {
	id := c.Param("id")
	if !h.tracker.Cancel(id) {
		RespondWithError(c, apperrors.NotFound("run", id))
		return
	}
	run, _ := h.tracker.Get(id)
	RespondAccepted(c, handleView(run))
}
