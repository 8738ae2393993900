package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=admin manager teller"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"     validate:"omitempty,min=2,max=100"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin manager teller"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// BulkImportResponse reports per-row outcomes of a CSV user import.
type BulkImportResponse struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []BulkImportErr  `json:"errors,omitempty"`
}

type BulkImportErr struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}
