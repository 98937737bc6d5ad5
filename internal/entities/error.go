package entities

import "errors"

var (
	ErrNotFound      = errors.New("entity not found")
	ErrRedisTimeout  = errors.New("timeout waiting for Redis message")
	ErrRedisCanceled = errors.New("redis subscription canceled")

	ErrNetwork     = errors.New("network failure")
	ErrParse       = errors.New("parse failure")
	ErrMissingData = errors.New("missing data")

	ErrNoSnapshot      = errors.New("no rate snapshot available yet")
	ErrRefreshInFlight = errors.New("refresh already in flight")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrRateUnavailable = errors.New("rate not loaded for currency")
	ErrInvalidRequest  = errors.New("invalid request")
)
