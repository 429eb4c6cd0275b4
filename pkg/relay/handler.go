// Package relay is the storefront-facing HTTP surface: it validates a
// submission, pushes it to LINE and hands a copy to the secondary channel.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"notification-hub/relay/pkg/config"
	"notification-hub/relay/pkg/delivery"
	"notification-hub/relay/pkg/domain"
	"notification-hub/relay/pkg/line"
	"notification-hub/relay/pkg/logger"
	"notification-hub/relay/pkg/metrics"
	"notification-hub/relay/pkg/render"
)

const (
	successMessage      = "ส่งแจ้งเตือนเข้า LINE สำเร็จ"
	errMethodNotAllowed = "Method Not Allowed"
	errNotConfigured    = "Server not configured with LINE secrets"
	maxBodyBytes        = 1 << 20
)

/* -------------------- Response DTO -------------------- */

type okResp struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type errResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Pusher delivers the rendered text to the primary channel.
type Pusher interface {
	Push(ctx context.Context, to, text string) error
}

// Handler serves /order. Its configuration is read-only after startup, so
// one Handler serves all requests concurrently.
type Handler struct {
	cfg       *config.Config
	line      Pusher
	secondary *delivery.Dispatcher
}

func NewHandler(cfg *config.Config, pusher Pusher, secondary *delivery.Dispatcher) *Handler {
	if secondary == nil {
		secondary = delivery.NewDispatcher(nil, 0)
	}
	return &Handler{cfg: cfg, line: pusher, secondary: secondary}
}

// Order runs the relay pipeline: method gate, config gate, render, LINE push,
// then the best-effort secondary delivery.
func (h *Handler) Order(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.AbortWithStatus(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, errResp{Error: errMethodNotAllowed})
		return
	}

	if !h.cfg.HasLineSecrets() {
		logger.Error("missing LINE secrets")
		c.JSON(http.StatusInternalServerError, errResp{Error: errNotConfigured})
		return
	}

	sub, err := bindSubmission(c)
	if err != nil {
		logger.Get().Error().Err(err).Msg("could not read submission")
		c.JSON(http.StatusInternalServerError, errResp{Error: err.Error()})
		return
	}

	rendered := render.Render(sub)
	metrics.IncSubmission(string(rendered.Kind))

	start := time.Now()
	err = h.line.Push(c.Request.Context(), h.cfg.LineTargetID, rendered.Text)
	metrics.ObservePrimary(err == nil, time.Since(start).Seconds())
	if err != nil {
		detail := err.Error()
		var apiErr *line.APIError
		if errors.As(err, &apiErr) {
			detail = apiErr.Body
		}
		logger.Get().Error().Err(err).Str("kind", string(rendered.Kind)).Msg("LINE push failed")
		c.JSON(http.StatusBadGateway, errResp{Error: detail})
		return
	}
	logger.Get().Info().Str("kind", string(rendered.Kind)).Msg("LINE message sent")

	env := render.Envelope(rendered, sub, h.cfg.AdminEmail, h.cfg.Sender())
	h.secondary.Dispatch(c.Request.Context(), env)

	c.JSON(http.StatusOK, okResp{OK: true, Message: successMessage})
}

// bindSubmission decodes the body. An empty body is an empty submission.
func bindSubmission(c *gin.Context) (domain.Submission, error) {
	var sub domain.Submission
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		return sub, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return sub, nil
	}
	if err := json.Unmarshal(raw, &sub); err != nil {
		return sub, err
	}
	return sub, nil
}
