package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"curvelaunch/native/launch"
)

const jsonRPCVersion = "2.0"

var errParamObjectRequired = errors.New("parameter object required")

func priceScaleString() string {
	return launch.PriceScale().String()
}

// JSON-RPC protocol codes plus one module code per engine error kind, so
// clients can branch on the failure without string matching.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020

	codePaused              = -32030
	codeUnknownToken        = -32031
	codeNotLive             = -32032
	codeAlreadyGraduated    = -32033
	codeInsufficientPayment = -32034
	codeInsufficientBalance = -32035
	codeSlippageExceeded    = -32036
	codeZeroAmount          = -32037
	codeTransferFailed      = -32038
	codeReentrancy          = -32039
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeEngineError maps an engine error to its module code. Unrecognised
// errors surface as generic server errors without leaking internals.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	type mapping struct {
		target error
		status int
		code   int
	}
	mappings := []mapping{
		{launch.ErrPaused, http.StatusServiceUnavailable, codePaused},
		{launch.ErrUnknownToken, http.StatusNotFound, codeUnknownToken},
		{launch.ErrAlreadyGraduated, http.StatusConflict, codeAlreadyGraduated},
		{launch.ErrNotLive, http.StatusConflict, codeNotLive},
		{launch.ErrInsufficientPayment, http.StatusBadRequest, codeInsufficientPayment},
		{launch.ErrInsufficientBalance, http.StatusBadRequest, codeInsufficientBalance},
		{launch.ErrSlippageExceeded, http.StatusConflict, codeSlippageExceeded},
		{launch.ErrZeroAmount, http.StatusBadRequest, codeZeroAmount},
		{launch.ErrTransferFailed, http.StatusBadGateway, codeTransferFailed},
		{launch.ErrReentrancy, http.StatusConflict, codeReentrancy},
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			writeError(w, m.status, id, m.code, m.target.Error(), nil)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, id, codeServerError, "internal error", nil)
}

// TokenResult is the wire shape of a token record.
type TokenResult struct {
	ID             uint64 `json:"id"`
	Address        string `json:"address"`
	Creator        string `json:"creator"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	MetadataURI    string `json:"metadataUri,omitempty"`
	Status         string `json:"status"`
	ReserveBalance string `json:"reserveBalance"`
	UnitsIssued    string `json:"unitsIssued"`
	TradingVolume  string `json:"tradingVolume"`
	TradeCount     uint64 `json:"tradeCount"`
	HolderCount    uint64 `json:"holderCount"`
	CreatedAt      int64  `json:"createdAt"`
	GraduatedAt    int64  `json:"graduatedAt,omitempty"`
}

func tokenResult(record *launch.TokenRecord) TokenResult {
	return TokenResult{
		ID:             record.ID,
		Address:        encodeAddress(record.Address),
		Creator:        encodeAddress(record.Creator),
		Name:           record.Name,
		Symbol:         record.Symbol,
		MetadataURI:    record.MetadataURI,
		Status:         record.Status.String(),
		ReserveBalance: bigString(record.ReserveBalance),
		UnitsIssued:    bigString(record.UnitsIssued),
		TradingVolume:  bigString(record.TradingVolume),
		TradeCount:     record.TradeCount,
		HolderCount:    record.HolderCount,
		CreatedAt:      record.CreatedAt,
		GraduatedAt:    record.GraduatedAt,
	}
}

// PoolReceiptResult is the wire shape of a graduation pool receipt.
type PoolReceiptResult struct {
	Pool        string `json:"pool"`
	Token       string `json:"token"`
	BaseSeeded  string `json:"baseSeeded"`
	UnitsSeeded string `json:"unitsSeeded"`
	Recipient   string `json:"recipient"`
}

// TradeResultPayload is the wire shape of a completed trade.
type TradeResultPayload struct {
	Token     TokenResult         `json:"token"`
	Gross     string              `json:"gross"`
	Fee       string              `json:"fee"`
	Net       string              `json:"net"`
	Units     string              `json:"units"`
	Graduated bool                `json:"graduated"`
	Receipts  []PoolReceiptResult `json:"receipts,omitempty"`
}

func tradeResultPayload(result *launch.TradeResult) TradeResultPayload {
	payload := TradeResultPayload{
		Token:     tokenResult(result.Token),
		Gross:     bigString(result.Gross),
		Fee:       bigString(result.Fee),
		Net:       bigString(result.Net),
		Units:     bigString(result.Units),
		Graduated: result.Graduated,
	}
	for _, receipt := range result.Receipts {
		payload.Receipts = append(payload.Receipts, PoolReceiptResult{
			Pool:        receipt.Pool,
			Token:       encodeAddress(receipt.Token),
			BaseSeeded:  bigString(receipt.BaseSeeded),
			UnitsSeeded: bigString(receipt.UnitsSeeded),
			Recipient:   encodeAddress(receipt.Recipient),
		})
	}
	return payload
}

// ParamsResult is the wire shape of the engine parameter set.
type ParamsResult struct {
	Version             uint64 `json:"version"`
	Paused              bool   `json:"paused"`
	BuyFeeBps           uint32 `json:"buyFeeBps"`
	SellFeeBps          uint32 `json:"sellFeeBps"`
	LaunchFeePLS        string `json:"launchFeePls"`
	VirtualBaseReserve  string `json:"virtualBaseReserve"`
	VirtualUnitReserve  string `json:"virtualUnitReserve"`
	MaxSupply           string `json:"maxSupply"`
	GraduationThreshold string `json:"graduationThreshold"`
	BurnBps             uint32 `json:"burnBps"`
	PoolABps            uint32 `json:"poolABps"`
	PoolBBps            uint32 `json:"poolBBps"`
	RewardBps           uint32 `json:"rewardBps"`
	MinSeedRatioBps     uint32 `json:"minSeedRatioBps"`
	Treasury            string `json:"treasury"`
	BurnSink            string `json:"burnSink"`
	ReceiptRecipient    string `json:"receiptRecipient"`
}

func paramsResult(p launch.Params) ParamsResult {
	return ParamsResult{
		Version:             p.Version,
		Paused:              p.Paused,
		BuyFeeBps:           p.Fees.BuyBps,
		SellFeeBps:          p.Fees.SellBps,
		LaunchFeePLS:        bigString(p.LaunchFeePLS),
		VirtualBaseReserve:  bigString(p.VirtualBaseReserve),
		VirtualUnitReserve:  bigString(p.VirtualUnitReserve),
		MaxSupply:           bigString(p.MaxSupply),
		GraduationThreshold: bigString(p.GraduationThreshold),
		BurnBps:             p.BurnBps,
		PoolABps:            p.PoolABps,
		PoolBBps:            p.PoolBBps,
		RewardBps:           p.RewardBps,
		MinSeedRatioBps:     p.MinSeedRatioBps,
		Treasury:            encodeAddress(p.Treasury),
		BurnSink:            encodeAddress(p.BurnSink),
		ReceiptRecipient:    encodeAddress(p.ReceiptRecipient),
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func encodeAddress(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func parseAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q", raw)
	}
	if len(decoded) != 20 {
		return addr, fmt.Errorf("address must be 20 bytes, got %d", len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

// parseAmount decodes a decimal string into a non-negative big integer.
func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	v, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return v, nil
}

// parseOptionalAmount treats an empty string as absent.
func parseOptionalAmount(raw string) (*big.Int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return parseAmount(raw)
}
