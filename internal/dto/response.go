package dto

// SuccessResponse is the envelope for all successful API responses.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// OK wraps a result body in the success envelope.
func OK(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

// MessageResponse is the envelope for responses that carry no body.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Message wraps a human-readable message in the success envelope.
func Message(message string) MessageResponse {
	return MessageResponse{Success: true, Message: message}
}
