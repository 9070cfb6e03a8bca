package launch

import "errors"

// Operation errors surfaced to callers. Each precondition failure aborts the
// whole operation with no state change; RPC maps every sentinel to a distinct
// code so clients can branch on the failure kind.
var (
	ErrPaused              = errors.New("launch engine: trading paused")
	ErrUnknownToken        = errors.New("launch engine: unknown token")
	ErrNotLive             = errors.New("launch engine: token not live")
	ErrAlreadyGraduated    = errors.New("launch engine: token already graduated")
	ErrInsufficientPayment = errors.New("launch engine: insufficient payment")
	ErrInsufficientBalance = errors.New("launch engine: insufficient balance")
	ErrSlippageExceeded    = errors.New("launch engine: slippage bound exceeded")
	ErrZeroAmount          = errors.New("launch engine: amount must be positive")
	ErrTransferFailed      = errors.New("launch engine: transfer failed")
	ErrReentrancy          = errors.New("launch engine: reentrant call rejected")
)

// Engine wiring errors.
var (
	errNilState       = errors.New("launch engine: state not configured")
	errNilIssuer      = errors.New("launch engine: unit issuer not configured")
	errTreasuryNotSet = errors.New("launch engine: treasury not configured")
	errVaultNotSet    = errors.New("launch engine: reserve vault not configured")
	errInvalidMeta    = errors.New("launch engine: name and symbol required")
)
