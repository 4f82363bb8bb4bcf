package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/internal/application/dto"
	appservice "github.com/turtacn/oralrisk/internal/application/service"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/oralrisk/internal/interfaces/http/web"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
	MaxAge int // seconds
}

// pageData is the single view model shared by every template.
type pageData struct {
	Title    string
	Username string
	Error    string
	Notice   string

	LoginType  string
	Identifier string
	Form       dto.RegisterRequest

	Fields  []web.SelectField
	Classes []string
	Input   models.RiskFactorInput
	Result  *dto.PredictionResponse

	Columns []string
	Records []models.PredictionRecord

	Status     int
	StatusText string
	Message    string
}

// WebHandler serves the browser pages: welcome, login, registration, screening and history.
// WebHandler 提供浏览器页面。
type WebHandler struct {
	accounts    appservice.AccountAppService
	predictions appservice.PredictionAppService
	sessions    service.SessionStore
	cookie      CookieConfig
	logger      logger.Logger
}

// NewWebHandler creates a new WebHandler.
func NewWebHandler(
	accounts appservice.AccountAppService,
	predictions appservice.PredictionAppService,
	sessions service.SessionStore,
	cookie CookieConfig,
	log logger.Logger,
) *WebHandler {
	return &WebHandler{
		accounts:    accounts,
		predictions: predictions,
		sessions:    sessions,
		cookie:      cookie,
		logger:      log.WithComponent("web_handler"),
	}
}

func (h *WebHandler) page(c *gin.Context, title string) pageData {
	return pageData{Title: title, Username: middleware.Username(c), LoginType: string(constants.LoginTypeUsername)}
}

func (h *WebHandler) render(c *gin.Context, status int, name string, data pageData) {
	c.HTML(status, name, data)
}

// renderError shows the generic error page with the status the error maps to.
func (h *WebHandler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := errors.HTTPStatus(err)
	data := h.page(c, "Error")
	data.Status = status
	data.StatusText = http.StatusText(status)
	data.Message = errors.ToErrorResponse(err).ErrorDescription
	h.render(c, status, "error.html", data)
}

// Welcome renders the landing page.
func (h *WebHandler) Welcome(c *gin.Context) {
	h.render(c, http.StatusOK, "welcome.html", h.page(c, "Welcome"))
}

// LoginPage renders the empty login form.
func (h *WebHandler) LoginPage(c *gin.Context) {
	data := h.page(c, "Log in")
	if c.Query("registered") != "" {
		data.Notice = "Account created. You can log in now."
	}
	h.render(c, http.StatusOK, "login.html", data)
}

// Login checks the submitted credentials, starts a session and redirects to the screening form.
// Login 校验凭据并创建会话。
func (h *WebHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, errors.ErrInvalidRequest.WithCause(err))
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			data := h.page(c, "Log in")
			data.LoginType = string(constants.ParseLoginType(req.LoginType))
			data.Identifier = req.Identifier
			data.Error = "Invalid credentials"
			_ = c.Error(err)
			h.render(c, http.StatusUnauthorized, "login.html", data)
			return
		}
		h.renderError(c, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), account.Username)
	if err != nil {
		h.logger.Error(c.Request.Context(), "Failed to create session", err, logger.Fields{"username": account.Username})
		h.renderError(c, err)
		return
	}
	h.setSessionCookie(c, sess.ID, h.cookie.MaxAge)
	c.Redirect(http.StatusFound, "/index")
}

// Logout ends the session and returns to the welcome page.
func (h *WebHandler) Logout(c *gin.Context) {
	if id, err := c.Cookie(constants.SessionCookieName); err == nil && id != "" {
		if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
			h.logger.Warn(c.Request.Context(), "Failed to delete session", logger.Fields{"error": err.Error()})
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/welcome")
}

func (h *WebHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.SessionCookieName, value, maxAge, "/", "", h.cookie.Secure, true)
}

// RegisterPage renders the empty registration form.
func (h *WebHandler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", h.page(c, "Register"))
}

// Register creates an account and sends the user to the login form.
// Register 注册账户。
func (h *WebHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderError(c, errors.ErrInvalidRequest.WithCause(err))
		return
	}

	if _, err := h.accounts.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, errors.ErrAccountExists) {
			data := h.page(c, "Register")
			data.Form = dto.RegisterRequest{Username: req.Username, Email: req.Email, Phone: req.Phone}
			data.Error = "Account already exists"
			_ = c.Error(err)
			h.render(c, http.StatusConflict, "register.html", data)
			return
		}
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login?registered=1")
}

// IndexPage renders the screening form.
func (h *WebHandler) IndexPage(c *gin.Context) {
	data := h.page(c, "Screening")
	data.Fields = web.FormFields
	h.render(c, http.StatusOK, "index.html", data)
}

// Predict scores the submitted form, stores the record and renders the result.
// Predict 评估表单并展示结果。
func (h *WebHandler) Predict(c *gin.Context) {
	in, err := models.ParseRiskFactorInput(c.PostForm)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp, err := h.predictions.Submit(c.Request.Context(), middleware.Username(c), in)
	if err != nil {
		h.renderError(c, err)
		return
	}

	data := h.page(c, "Result")
	data.Input = in
	data.Result = resp
	data.Classes = h.predictions.Classes()
	h.render(c, http.StatusOK, "index.html", data)
}

// History lists every stored prediction, newest first. Read failures are shown inline.
// History 展示预测历史。
func (h *WebHandler) History(c *gin.Context) {
	data := h.page(c, "History")
	data.Columns = models.CurrentSchema.Fields

	records, err := h.predictions.History(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		data.Error = err.Error()
		h.render(c, http.StatusOK, "history.html", data)
		return
	}
	data.Records = records
	h.render(c, http.StatusOK, "history.html", data)
}
