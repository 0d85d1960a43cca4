package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/services"
	"github.com/charlesng35/boardsync/pkg/errors"
	"github.com/charlesng35/boardsync/pkg/logger"
	"github.com/charlesng35/boardsync/pkg/response"
)

type LayoutHandler struct {
	svc *services.LayoutService
}

type saveLayoutRequest struct {
	Sections []layout.Section `json:"sections"`
}

type collapseRequest struct {
	Collapsed bool `json:"collapsed"`
}

type layoutResponse struct {
	Sections []layout.Section `json:"sections"`
}

type planResponse struct {
	Summary      map[string]int `json:"summary"`
	DroppedLinks []layout.Link  `json:"dropped_links"`
}

// saveLayoutResponse carries the stored tree only when Reloaded is true.
type saveLayoutResponse struct {
	layoutResponse
	Plan     planResponse `json:"plan"`
	Reloaded bool         `json:"reloaded"`
}

func NewLayoutHandler(svc *services.LayoutService) *LayoutHandler {
	return &LayoutHandler{svc: svc}
}

// GET /api/boards/:id/layout
func (h *LayoutHandler) Get(c *gin.Context) {
	sections, err := h.svc.Load(requestContext(c), principalFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, layoutResponse{Sections: sections})
}

// PUT /api/boards/:id/layout
func (h *LayoutHandler) Save(c *gin.Context) {
	sections, ok := bindLayout(c)
	if !ok {
		return
	}

	ctx := requestContext(c)
	principal := principalFrom(c)
	boardID := c.Param("id")

	plan, err := h.svc.ReconcileAndApply(ctx, principal, boardID, sections)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The plan is committed at this point, so a failed read back must not turn into an error.
	stored, err := h.svc.Load(ctx, principal, boardID)
	if err != nil {
		logger.WithBoard("handlers", boardID).Warn("layout saved but reload failed", zap.Error(err))
		response.Success(c, http.StatusOK, saveLayoutResponse{Plan: toPlanResponse(plan)})
		return
	}

	response.Success(c, http.StatusOK, saveLayoutResponse{
		layoutResponse: layoutResponse{Sections: stored},
		Plan:           toPlanResponse(plan),
		Reloaded:       true,
	})
}

// POST /api/boards/:id/layout/plan
func (h *LayoutHandler) Plan(c *gin.Context) {
	sections, ok := bindLayout(c)
	if !ok {
		return
	}

	plan, err := h.svc.Plan(requestContext(c), principalFrom(c), c.Param("id"), sections)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPlanResponse(plan))
}

// PUT /api/boards/:id/sections/:sectionID/collapse
func (h *LayoutHandler) Collapse(c *gin.Context) {
	var body collapseRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetSectionCollapsed(requestContext(c), principalFrom(c), c.Param("id"), c.Param("sectionID"), body.Collapsed); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"collapsed": body.Collapsed})
}

func bindLayout(c *gin.Context) ([]layout.Section, bool) {
	var body saveLayoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.NewBadRequest("invalid JSON payload"))
		return nil, false
	}
	if err := layout.Validate(body.Sections); err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return nil, false
	}
	return body.Sections, true
}

func toPlanResponse(plan *layout.Plan) planResponse {
	dropped := plan.DroppedLinks
	if dropped == nil {
		dropped = []layout.Link{}
	}
	return planResponse{Summary: plan.Summary(), DroppedLinks: dropped}
}
