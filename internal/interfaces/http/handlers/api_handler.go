package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/internal/application/dto"
	appservice "github.com/turtacn/oralrisk/internal/application/service"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// AuthHandler handles HTTP requests related to API authentication.
type AuthHandler struct {
	tokens appservice.TokenAppService
	logger logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(tokens appservice.TokenAppService, log logger.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, logger: log.WithComponent("auth_handler")}
}

// IssueToken handles POST /api/v1/auth/token.
// IssueToken 颁发 API 令牌。
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest.WithMessage("malformed JSON body").WithCause(err))
		return
	}

	resp, err := h.tokens.IssueToken(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// PredictionHandler serves the JSON prediction endpoints.
type PredictionHandler struct {
	predictions appservice.PredictionAppService
	logger      logger.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictions appservice.PredictionAppService, log logger.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, logger: log.WithComponent("prediction_handler")}
}

// Create handles POST /api/v1/predictions.
// Create 提交一次风险评估。
func (h *PredictionHandler) Create(c *gin.Context) {
	var in models.RiskFactorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest.WithMessage("malformed JSON body").WithCause(err))
		return
	}

	resp, err := h.predictions.Submit(c.Request.Context(), middleware.Username(c), in)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, resp)
}

// List handles GET /api/v1/predictions.
func (h *PredictionHandler) List(c *gin.Context) {
	records, err := h.predictions.History(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.NewHistoryResponse(records))
}
