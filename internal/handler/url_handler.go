package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/Kosench/keyed-url-shortener/internal/errors"
	"github.com/Kosench/keyed-url-shortener/internal/model"
)

const (
	WelcomeMessage = "Welcome to the URL shortener API :)"

	msgInvalidURL  = "Your provided URL is not valid"
	msgInvalidJSON = "Invalid JSON body"
	msgInternal    = "Internal server error"
	msgUnavailable = "Service temporarily unavailable"
	msgActivated   = "Successfully activated the shortened URL for '%s'"
	msgDeactivated = "Successfully deactivated the shortened URL for '%s'"
	msgNotFound    = "URL '%s' doesn't exist"
)

type URLService interface {
	CreateEntry(ctx context.Context, targetURL string) (model.URLEntry, error)
	ResolveForRedirect(ctx context.Context, key string) (model.URLEntry, error)
	ResolveForAdmin(ctx context.Context, secretKey string) (model.URLEntry, error)
	Activate(ctx context.Context, secretKey string) (model.URLEntry, error)
	Deactivate(ctx context.Context, secretKey string) (model.URLEntry, error)
	Info(entry model.URLEntry) model.URLInfo
}

type URLHandler struct {
	urlService URLService
	logger     *zap.Logger
}

func NewURLHandler(urlService URLService, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		urlService: urlService,
		logger:     logger.With(zap.String("component", "url_handler")),
	}
}

func (h *URLHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, WelcomeMessage)
}

func (h *URLHandler) CreateURL(c *gin.Context) {
	var req model.CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.DetailResponse{Detail: msgInvalidJSON})
		return
	}

	entry, err := h.urlService.CreateEntry(c.Request.Context(), req.TargetURL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.urlService.Info(entry))
}

func (h *URLHandler) RedirectURL(c *gin.Context) {
	entry, err := h.urlService.ResolveForRedirect(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, entry.TargetURL)
}

func (h *URLHandler) GetAdminInfo(c *gin.Context) {
	entry, err := h.urlService.ResolveForAdmin(c.Request.Context(), c.Param("secretKey"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.urlService.Info(entry))
}

func (h *URLHandler) ActivateURL(c *gin.Context) {
	entry, err := h.urlService.Activate(c.Request.Context(), c.Param("secretKey"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.DetailResponse{Detail: fmt.Sprintf(msgActivated, entry.TargetURL)})
}

func (h *URLHandler) DeactivateURL(c *gin.Context) {
	entry, err := h.urlService.Deactivate(c.Request.Context(), c.Param("secretKey"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.DetailResponse{Detail: fmt.Sprintf(msgDeactivated, entry.TargetURL)})
}

// NotFound answers unmatched routes with the same body as an unknown key.
func (h *URLHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, model.DetailResponse{Detail: fmt.Sprintf(msgNotFound, requestURL(c.Request))})
}

func (h *URLHandler) handleError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidationError(err):
		c.JSON(http.StatusBadRequest, model.DetailResponse{Detail: msgInvalidURL})

	case errors.Is(err, apperrors.ErrURLNotFound):
		h.NotFound(c)

	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("store timeout", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, model.DetailResponse{Detail: msgUnavailable})

	default:
		fields := []zap.Field{zap.String("path", c.FullPath()), zap.Error(err)}
		if businessErr := apperrors.GetBusinessError(err); businessErr != nil {
			fields = append(fields, zap.String("code", businessErr.Code))
		}
		h.logger.Error("request failed", fields...)
		c.JSON(http.StatusInternalServerError, model.DetailResponse{Detail: msgInternal})
	}
}

// requestURL reconstructs the absolute URL the client asked for.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}
	return u.String()
}
