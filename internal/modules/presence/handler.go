package presence

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solar-nova/presence-core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	reg *Registry
	log *zap.Logger
}

func NewHandler(reg *Registry, log *zap.Logger) *Handler {
	return &Handler{reg: reg, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/v1/hit", h.hit)
	rg.GET("/v1/online", h.online)
}

type heartbeatDTO struct {
	UID          json.RawMessage `json:"uid"`
	LastActivity json.RawMessage `json:"last_activity"`
}

func (h *Handler) hit(c *gin.Context) {
	var dto heartbeatDTO
	// A body that is not JSON at all is treated like an empty payload.
	_ = c.ShouldBindJSON(&dto)

	uid := parseUID(dto.UID)
	if uid == "" {
		response.BadRequest(c, "no uid")
		return
	}

	now := time.Now().Unix()
	lastActivity, ok, err := parseLastActivity(dto.LastActivity)
	if err != nil {
		response.BadRequest(c, "invalid last_activity")
		return
	}
	if !ok {
		lastActivity = now
	}

	h.reg.RecordHeartbeat(uid, lastActivity, now)
	h.log.Debug("heartbeat",
		zap.String("uid", uid),
		zap.Int64("last_activity", lastActivity),
	)
	response.OK(c)
}

func (h *Handler) online(c *gin.Context) {
	response.Data(c, h.reg.Summarize(time.Now().Unix()))
}

// parseUID stringifies the visitor-supplied uid. Numbers are coerced to
// their decimal text so a client sending `{"uid":123}` counts as "123".
// Anything else (absent, null, non-scalar) yields "".
func parseUID(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}

	return ""
}

// parseLastActivity coerces the visitor-supplied value to unix seconds.
// Numbers are truncated; numeric strings are accepted for legacy clients.
// Returns ok=false when the field is absent or null.
func parseLastActivity(raw json.RawMessage) (int64, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false, nil
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if v, err := num.Int64(); err == nil {
			return v, true, nil
		}
		if f, err := num.Float64(); err == nil {
			return int64(f), true, nil
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return v, true, nil
		}
	}

	return 0, false, errInvalidLastActivity
}

var errInvalidLastActivity = errors.New("last_activity is not an integer")
