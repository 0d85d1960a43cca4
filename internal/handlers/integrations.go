package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/services"
	"github.com/charlesng35/boardsync/pkg/response"
)

type IntegrationHandler struct {
	svc *services.IntegrationAccessService
}

type createIntegrationRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Kind string `json:"kind" validate:"required,max=64"`
	URL  string `json:"url" validate:"omitempty,url"`
}

type integrationGrantRequest struct {
	PrincipalType string `json:"principal_type" validate:"required,oneof=user group"`
	PrincipalID   string `json:"principal_id" validate:"required"`
	Permission    string `json:"permission" validate:"required,oneof=use interact full"`
}

func NewIntegrationHandler(db *gorm.DB) (*IntegrationHandler, error) {
	svc, err := services.NewIntegrationAccessService(db)
	if err != nil {
		return nil, err
	}
	return &IntegrationHandler{svc: svc}, nil
}

// POST /api/integrations
func (h *IntegrationHandler) Create(c *gin.Context) {
	var body createIntegrationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	integration, err := h.svc.Create(requestContext(c), principalFrom(c), services.CreateIntegrationInput{
		Name: body.Name,
		Kind: body.Kind,
		URL:  body.URL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, integration)
}

// PUT /api/integrations/:id/grants
func (h *IntegrationHandler) Grant(c *gin.Context) {
	var body integrationGrantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.svc.Grant(requestContext(c), principalFrom(c), c.Param("id"), body.PrincipalType, body.PrincipalID, body.Permission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"granted": true})
}
