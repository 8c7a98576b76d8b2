package types

// Common API response shapes.

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Operator string `json:"operator" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token    string `json:"token"`
	Operator string `json:"operator"`
}
