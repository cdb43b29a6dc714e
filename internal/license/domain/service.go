package domain

import (
	"context"
	"errors"
)

type RedeemRequest struct {
	Code string `json:"code"`
}

type Service interface {
	Redeem(ctx context.Context, req RedeemRequest) (*License, error)
	Current(ctx context.Context) (*License, error)
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidCode     = errors.New("invalid_promo_code")
	ErrCodeNotFound    = errors.New("promo_code_not_found")
	ErrCodeExpired     = errors.New("promo_code_expired")
	ErrCodeExhausted   = errors.New("promo_code_exhausted")
	ErrAlreadyRedeemed = errors.New("promo_code_already_redeemed")
)
