package rpc

import (
	"encoding/json"
	"net/http"
)

func decodeParams(req *RPCRequest, dst interface{}) error {
	if len(req.Params) != 1 {
		return errParamObjectRequired
	}
	return json.Unmarshal(req.Params[0], dst)
}

type launchCreateParams struct {
	Creator     string `json:"creator"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	MetadataURI string `json:"metadataUri"`
}

func (s *Server) handleLaunchCreate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params launchCreateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	record, err := s.node.Launch(creator, params.Name, params.Symbol, params.MetadataURI)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tokenResult(record))
}

type tradeParams struct {
	Trader   string `json:"trader"`
	Token    uint64 `json:"token"`
	AmountIn string `json:"amountIn"`
	MinOut   string `json:"minOut"`
}

func (s *Server) handleLaunchBuy(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tradeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	buyer, err := parseAddress(params.Trader)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amountIn, err := parseAmount(params.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	minOut, err := parseOptionalAmount(params.MinOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	result, err := s.node.Buy(buyer, params.Token, amountIn, minOut)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tradeResultPayload(result))
}

func (s *Server) handleLaunchSell(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tradeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	seller, err := parseAddress(params.Trader)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	unitsIn, err := parseAmount(params.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	minOut, err := parseOptionalAmount(params.MinOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	result, err := s.node.Sell(seller, params.Token, unitsIn, minOut)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tradeResultPayload(result))
}

type quoteParams struct {
	Token    uint64 `json:"token"`
	AmountIn string `json:"amountIn"`
}

type quoteResult struct {
	Token     uint64 `json:"token"`
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`
}

func (s *Server) handleQuoteBuy(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params quoteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amountIn, err := parseAmount(params.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	out, err := s.node.QuoteBuy(params.Token, amountIn)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, quoteResult{Token: params.Token, AmountIn: amountIn.String(), AmountOut: out.String()})
}

func (s *Server) handleQuoteSell(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params quoteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	unitsIn, err := parseAmount(params.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	out, err := s.node.QuoteSell(params.Token, unitsIn)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, quoteResult{Token: params.Token, AmountIn: unitsIn.String(), AmountOut: out.String()})
}

type tokenParams struct {
	Token uint64 `json:"token"`
}

type priceResult struct {
	Token uint64 `json:"token"`
	Price string `json:"price"`
	Scale string `json:"scale"`
}

func (s *Server) handlePrice(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := s.node.CurrentPrice(params.Token)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, priceResult{Token: params.Token, Price: price.String(), Scale: priceScaleString()})
}

func (s *Server) handleToken(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	record, err := s.node.Token(params.Token)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tokenResult(record))
}

type tokenByAddressParams struct {
	Address string `json:"address"`
}

func (s *Server) handleTokenByAddress(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenByAddressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	record, err := s.node.TokenByAddress(addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tokenResult(record))
}

type tokensParams struct {
	After uint64 `json:"after"`
	Limit int    `json:"limit"`
}

func (s *Server) handleTokens(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := tokensParams{Limit: 50}
	if len(req.Params) == 1 {
		if err := json.Unmarshal(req.Params[0], &params); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
	}
	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}
	records, err := s.node.Tokens(params.After, params.Limit)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	results := make([]TokenResult, 0, len(records))
	for _, record := range records {
		results = append(results, tokenResult(record))
	}
	writeResult(w, req.ID, results)
}

type balanceParams struct {
	Token   uint64 `json:"token"`
	Address string `json:"address"`
}

type balanceResult struct {
	Token   uint64 `json:"token"`
	Address string `json:"address"`
	Units   string `json:"units"`
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	units, err := s.node.UnitBalanceOf(params.Token, addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Token: params.Token, Address: params.Address, Units: units.String()})
}

func (s *Server) handleParams(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	writeResult(w, req.ID, paramsResult(s.node.Params()))
}
