package health

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON body of the health endpoints.
type Response struct {
	Status  string                 `json:"status"`
	Checks  map[string]CheckStatus `json:"checks,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// CheckStatus is one check in Response.
type CheckStatus struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// LivenessHandler answers 200 when alive and 503 otherwise.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.Liveness(r.Context())
		writeStatus(w, status, err)
	}
}

// ReadinessHandler answers 200 when ready and 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.Readiness(r.Context())
		writeStatus(w, status, err)
	}
}

func writeStatus(w http.ResponseWriter, status Status, err error) {
	resp := Response{Status: "healthy", Checks: make(map[string]CheckStatus, len(status.Checks))}
	code := http.StatusOK
	if !status.Healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		if err != nil {
			resp.Message = err.Error()
		}
	}
	for _, r := range status.Checks {
		cs := CheckStatus{Status: "ok", Latency: r.Latency.String()}
		if !r.Healthy {
			cs.Status = "error"
			cs.Error = r.Error
		}
		resp.Checks[r.Name] = cs
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
