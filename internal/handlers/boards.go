package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	"github.com/charlesng35/boardsync/internal/services"
	"github.com/charlesng35/boardsync/pkg/errors"
	"github.com/charlesng35/boardsync/pkg/response"
)

type BoardHandler struct {
	svc   *services.BoardService
	audit *services.AuditService
}

type boardSettingsRequest struct {
	PageTitle    string `json:"page_title" validate:"omitempty,max=255"`
	MetaTitle    string `json:"meta_title" validate:"omitempty,max=255"`
	LogoImageURL string `json:"logo_image_url" validate:"omitempty,max=2048"`
	PrimaryColor string `json:"primary_color" validate:"omitempty,max=16"`
	ColumnCount  int    `json:"column_count" validate:"omitempty,gte=1,lte=24"`
}

type createBoardRequest struct {
	Name     string               `json:"name" validate:"required,max=255"`
	IsPublic bool                 `json:"is_public"`
	Settings boardSettingsRequest `json:"settings"`
}

type visibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

type renameBoardRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type boardGrantRequest struct {
	PrincipalID string `json:"principal_id" validate:"required"`
	Permission  string `json:"permission" validate:"required,oneof=view modify full"`
}

type replaceGrantsRequest struct {
	Users  []boardGrantRequest `json:"users" validate:"dive"`
	Groups []boardGrantRequest `json:"groups" validate:"dive"`
}

type boardResponse struct {
	*models.Board
	Access boardAccessResponse `json:"access"`
}

type boardAccessResponse struct {
	View   bool `json:"view"`
	Change bool `json:"change"`
	Full   bool `json:"full"`
}

func NewBoardHandler(db *gorm.DB) (*BoardHandler, error) {
	svc, err := services.NewBoardService(db)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	return &BoardHandler{svc: svc, audit: audit}, nil
}

// POST /api/boards
func (h *BoardHandler) Create(c *gin.Context) {
	var body createBoardRequest
	if !bindAndValidate(c, &body) {
		return
	}

	board, err := h.svc.Create(requestContext(c), principalFrom(c), services.CreateBoardInput{
		Name:     body.Name,
		IsPublic: body.IsPublic,
		Settings: body.Settings.toSettings(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, boardResponse{
		Board:  board,
		Access: boardAccessResponse{View: true, Change: true, Full: true},
	})
}

// GET /api/boards/:id
func (h *BoardHandler) Get(c *gin.Context) {
	h.get(c, services.BoardByID(c.Param("id")))
}

// GET /api/board-names/:name
func (h *BoardHandler) GetByName(c *gin.Context) {
	h.get(c, services.BoardByName(c.Param("name")))
}

func (h *BoardHandler) get(c *gin.Context, selector services.BoardSelector) {
	view, err := h.svc.Get(requestContext(c), principalFrom(c), selector)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBoardResponse(view.Board, view.Access))
}

// PUT /api/boards/:id/settings
func (h *BoardHandler) UpdateSettings(c *gin.Context) {
	var body boardSettingsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	board, err := h.svc.UpdateSettings(requestContext(c), principalFrom(c), c.Param("id"), body.toSettings())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, board)
}

// PUT /api/boards/:id/visibility
func (h *BoardHandler) SetVisibility(c *gin.Context) {
	var body visibilityRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetVisibility(requestContext(c), principalFrom(c), c.Param("id"), body.IsPublic); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_public": body.IsPublic})
}

// PUT /api/boards/:id/name
func (h *BoardHandler) Rename(c *gin.Context) {
	var body renameBoardRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.Rename(requestContext(c), principalFrom(c), c.Param("id"), body.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"renamed": true})
}

// DELETE /api/boards/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), principalFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/boards/:id/grants
func (h *BoardHandler) ListGrants(c *gin.Context) {
	grants, err := h.svc.ListGrants(requestContext(c), principalFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grants)
}

// PUT /api/boards/:id/grants
func (h *BoardHandler) ReplaceGrants(c *gin.Context) {
	var body replaceGrantsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	grants := services.BoardGrants{
		Users:  toBoardGrants(body.Users),
		Groups: toBoardGrants(body.Groups),
	}
	if err := h.svc.ReplaceGrants(requestContext(c), principalFrom(c), c.Param("id"), grants); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, grants)
}

func (r boardSettingsRequest) toSettings() services.BoardSettings {
	return services.BoardSettings{
		PageTitle:    r.PageTitle,
		MetaTitle:    r.MetaTitle,
		LogoImageURL: r.LogoImageURL,
		PrimaryColor: r.PrimaryColor,
		ColumnCount:  r.ColumnCount,
	}
}

func toBoardGrants(in []boardGrantRequest) []services.BoardGrant {
	out := make([]services.BoardGrant, 0, len(in))
	for _, grant := range in {
		out = append(out, services.BoardGrant{
			PrincipalID: grant.PrincipalID,
			Permission:  models.BoardPermission(grant.Permission),
		})
	}
	return out
}

func toBoardResponse(board *models.Board, access permissions.BoardAccess) boardResponse {
	return boardResponse{
		Board: board,
		Access: boardAccessResponse{
			View:   access.HasViewAccess,
			Change: access.HasChangeAccess,
			Full:   access.HasFullAccess,
		},
	}
}

// GET /api/boards/:id/audit?limit=50
func (h *BoardHandler) ListAudit(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, errors.NewBadRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.audit.ListBoard(requestContext(c), principalFrom(c), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}
