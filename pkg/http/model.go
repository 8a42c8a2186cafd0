package http

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  int         `json:"status" example:"202"`
	Message string      `json:"message" example:"Accepted"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"portfolio[0].ticker"`
	Message string                 `json:"message,omitempty" example:"portfolio[0].ticker is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
