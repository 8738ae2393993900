package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type UpsertSecurityRequest struct {
	Symbol string          `json:"symbol" validate:"required,min=1,max=12"`
	Name   string          `json:"name"   validate:"required,min=1,max=100"`
	Price  decimal.Decimal `json:"price"  validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SecurityResponse struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Change    decimal.Decimal `json:"change"`
	Volume    int64           `json:"volume"`
	UpdatedAt string          `json:"updated_at"`
}
