package integration

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opsvista/opsvista/internal/transport"
)

// SlackHandler mocks a notification channel: posts are echoed back with
// a message id, nothing is delivered anywhere.
type SlackHandler struct {
	*transport.BaseHandler
}

func NewSlackHandler(base *transport.BaseHandler) *SlackHandler {
	return &SlackHandler{BaseHandler: base}
}

type slackPostRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

func (h *SlackHandler) Channels(w http.ResponseWriter, r *http.Request) {
	channels := []map[string]interface{}{
		{"id": "C01OPS", "name": "ops-alerts", "members": 24},
		{"id": "C02DEP", "name": "deployments", "members": 41},
		{"id": "C03INC", "name": "incidents", "members": 17},
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *SlackHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req slackPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Channel == "" || req.Text == "" {
		h.WriteError(w, http.StatusBadRequest, "channel and text are required")
		return
	}

	h.Logger.Info("mock slack post", "channel", req.Channel)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"message_id": uuid.NewString(),
		"channel":    req.Channel,
		"text":       req.Text,
		"posted_at":  time.Now(),
	})
}
