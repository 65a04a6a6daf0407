package api

import (
	"errors"
	"io"

	"github.com/labstack/echo/v4"

	"TVRelay/internal/domain/models"
	domrepo "TVRelay/internal/domain/repository"
	"TVRelay/internal/usecase"
	xhttp "TVRelay/pkg/http"
	xlogger "TVRelay/pkg/logger"
)

const serviceName = "TradingView Notification System v2.0"

// EmailInfo is the subset of email settings the diagnostic endpoints show.
type EmailInfo struct {
	User        string
	PasswordSet bool
	Recipient   string
}

// RelayHandler exposes the relay over HTTP. It only translates between
// HTTP and the usecase layer.
type RelayHandler struct {
	logger  *xlogger.Logger
	relay   *usecase.Relay
	limiter domrepo.RateLimiter
	email   EmailInfo
}

// NewRelayHandler builds the handler. A nil limiter disables rate limiting.
func NewRelayHandler(logger *xlogger.Logger, relay *usecase.Relay, limiter domrepo.RateLimiter, email EmailInfo) *RelayHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &RelayHandler{logger: logger, relay: relay, limiter: limiter, email: email}
}

func (h *RelayHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/status", h.Status)
	e.GET("/test", h.Test)
	e.GET("/test-email", h.TestEmail)
	e.POST("/webhook", h.Webhook, h.rateLimit)
}

type homeResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *RelayHandler) Home(c echo.Context) error {
	return xhttp.SuccessResponse(c, homeResponse{
		Status:  "running",
		Service: serviceName,
		Endpoints: map[string]string{
			"test":       "/test",
			"test_email": "/test-email",
			"webhook":    "/webhook (POST)",
			"status":     "/status",
		},
	})
}

type statusResponse struct {
	Status            string          `json:"status"`
	DiscordConfigured bool            `json:"discord_configured"`
	EmailUser         string          `json:"email_user,omitempty"`
	WebhookURL        string          `json:"webhook_url"`
	TestURL           string          `json:"test_url"`
	Sinks             map[string]bool `json:"sinks"`
}

func (h *RelayHandler) Status(c echo.Context) error {
	sinks := h.relay.SinkStatus()
	base := c.Scheme() + "://" + c.Request().Host
	return xhttp.SuccessResponse(c, statusResponse{
		Status:            "running",
		DiscordConfigured: sinks[models.SinkDiscord],
		EmailUser:         h.email.User,
		WebhookURL:        base + "/webhook",
		TestURL:           base + "/test",
		Sinks:             sinks,
	})
}

type testResponse struct {
	Message           string                  `json:"message"`
	DiscordConfigured bool                    `json:"discord_configured"`
	EmailConfigured   bool                    `json:"email_configured"`
	Results           []models.DispatchResult `json:"results"`
}

func (h *RelayHandler) Test(c echo.Context) error {
	out := h.relay.Test(c.Request().Context())
	sinks := h.relay.SinkStatus()
	return xhttp.SuccessResponse(c, testResponse{
		Message:           "Test notification sent!",
		DiscordConfigured: sinks[models.SinkDiscord],
		EmailConfigured:   sinks[models.SinkEmail],
		Results:           out.Results,
	})
}

type testEmailResponse struct {
	Success          bool   `json:"success"`
	Detail           string `json:"detail"`
	EmailConfigured  bool   `json:"email_configured"`
	EmailUserSet     bool   `json:"email_user_set"`
	EmailPasswordSet bool   `json:"email_password_set"`
	RecipientSet     bool   `json:"recipient_set"`
}

func (h *RelayHandler) TestEmail(c echo.Context) error {
	res := h.relay.TestEmail(c.Request().Context())
	return xhttp.SuccessResponse(c, testEmailResponse{
		Success:          res.Success,
		Detail:           res.Detail,
		EmailConfigured:  h.relay.SinkStatus()[models.SinkEmail],
		EmailUserSet:     h.email.User != "",
		EmailPasswordSet: h.email.PasswordSet,
		RecipientSet:     h.email.Recipient != "",
	})
}

type webhookResponse struct {
	Status  string                  `json:"status"`
	Subject string                  `json:"subject"`
	Results []models.DispatchResult `json:"results"`
}

func (h *RelayHandler) Webhook(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		h.logger.Warn("read webhook body", xlogger.Error(err))
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return xhttp.InternalError("read request body").WithError(err)
	}

	out, err := h.relay.Process(req.Context(), req.Header.Get(echo.HeaderContentType), body)
	if err != nil {
		var nerr *usecase.NormalizationError
		switch {
		case errors.Is(err, usecase.ErrUnauthorized):
			return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Invalid key"))
		case errors.As(err, &nerr):
			return xhttp.AppErrorResponse(c, xhttp.InternalError(nerr.Error()))
		default:
			return xhttp.AppErrorResponse(c, err)
		}
	}

	return xhttp.SuccessResponse(c, webhookResponse{
		Status:  "success",
		Subject: out.Subject,
		Results: out.Results,
	})
}

// rateLimit rejects callers over their budget with 429. Limiter errors let
// the request through.
func (h *RelayHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter == nil {
			return next(c)
		}
		ok, err := h.limiter.Allow(c.Request().Context(), c.RealIP())
		if err != nil {
			h.logger.Warn("rate limiter unavailable, allowing request", xlogger.Error(err))
		}
		if !ok {
			c.Response().Header().Set("Retry-After", "60")
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
		}
		return next(c)
	}
}
