package integration

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/opsvista/opsvista/internal/transport"
)

// KubernetesHandler serves canned cluster inventory data. There is no
// real cluster behind it; values are randomized per request to make
// dashboards move.
type KubernetesHandler struct {
	*transport.BaseHandler
}

func NewKubernetesHandler(base *transport.BaseHandler) *KubernetesHandler {
	return &KubernetesHandler{BaseHandler: base}
}

type namespaceInfo struct {
	Name     string `json:"name"`
	PodCount int    `json:"pod_count"`
	Status   string `json:"status"`
}

type podInfo struct {
	Name      string    `json:"name"`
	Namespace string    `json:"namespace"`
	Phase     string    `json:"phase"`
	Restarts  int       `json:"restarts"`
	StartedAt time.Time `json:"started_at"`
}

var mockNamespaces = []string{"default", "kube-system", "monitoring", "ingress", "production"}

var mockPodNames = []string{
	"api-gateway", "billing-service", "checkout", "notifications",
	"metrics-collector", "log-shipper", "cert-renewer",
}

func (h *KubernetesHandler) Namespaces(w http.ResponseWriter, r *http.Request) {
	out := make([]namespaceInfo, 0, len(mockNamespaces))
	for _, ns := range mockNamespaces {
		out = append(out, namespaceInfo{
			Name:     ns,
			PodCount: 2 + rand.Intn(20),
			Status:   "Active",
		})
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"namespaces": out})
}

func (h *KubernetesHandler) Pods(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("namespace")
	if namespace == "" {
		namespace = "default"
	}

	phases := []string{"Running", "Running", "Running", "Pending", "CrashLoopBackOff"}
	out := make([]podInfo, 0, len(mockPodNames))
	for _, name := range mockPodNames {
		out = append(out, podInfo{
			Name:      name + "-" + randomSuffix(5),
			Namespace: namespace,
			Phase:     phases[rand.Intn(len(phases))],
			Restarts:  rand.Intn(6),
			StartedAt: time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		})
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"namespace": namespace,
		"pods":      out,
	})
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
