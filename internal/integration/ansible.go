package integration

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/opsvista/opsvista/internal/transport"
)

// AnsibleHandler serves mock playbook run history.
type AnsibleHandler struct {
	*transport.BaseHandler
}

func NewAnsibleHandler(base *transport.BaseHandler) *AnsibleHandler {
	return &AnsibleHandler{BaseHandler: base}
}

type playbookRun struct {
	ID         int64     `json:"id"`
	Playbook   string    `json:"playbook"`
	Status     string    `json:"status"`
	HostsOK    int       `json:"hosts_ok"`
	HostsFail  int       `json:"hosts_failed"`
	DurationMs int       `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

var mockPlaybooks = []string{
	"site.yml", "deploy-web.yml", "patch-kernel.yml", "rotate-certs.yml", "provision-db.yml",
}

func (h *AnsibleHandler) Runs(w http.ResponseWriter, r *http.Request) {
	out := make([]playbookRun, 0, len(mockPlaybooks))
	for i, playbook := range mockPlaybooks {
		status := "successful"
		failed := 0
		if rand.Intn(5) == 0 {
			status = "failed"
			failed = 1 + rand.Intn(3)
		}
		out = append(out, playbookRun{
			ID:         int64(i + 1),
			Playbook:   playbook,
			Status:     status,
			HostsOK:    3 + rand.Intn(12),
			HostsFail:  failed,
			DurationMs: 1500 + rand.Intn(90000),
			StartedAt:  time.Now().Add(-time.Duration(rand.Intn(48)) * time.Hour),
		})
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"runs": out})
}

func (h *AnsibleHandler) Hosts(w http.ResponseWriter, r *http.Request) {
	hosts := []map[string]interface{}{
		{"name": "web-01", "groups": []string{"web", "production"}, "reachable": true},
		{"name": "web-02", "groups": []string{"web", "production"}, "reachable": true},
		{"name": "db-01", "groups": []string{"db", "production"}, "reachable": true},
		{"name": "staging-01", "groups": []string{"web", "staging"}, "reachable": rand.Intn(4) != 0},
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"hosts": hosts})
}
