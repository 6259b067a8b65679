package domain

// ErrorResponse is the JSON body of every non-2xx API answer.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
