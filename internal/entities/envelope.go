package entities

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every successful response. Total is set on list responses.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
}

type ErrorEnvelope struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Status  string              `json:"status"`
	Code    int                 `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
