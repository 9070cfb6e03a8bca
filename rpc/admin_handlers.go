package rpc

import (
	"net/http"

	"curvelaunch/native/launch"
)

type delistParams struct {
	Token  uint64 `json:"token"`
	Reason string `json:"reason"`
}

func (s *Server) handleDelist(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params delistParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	record, err := s.node.Delist(params.Token, params.Reason)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tokenResult(record))
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	p, err := s.node.SetPaused(true)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, paramsResult(p))
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	p, err := s.node.SetPaused(false)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, paramsResult(p))
}

type setFeesParams struct {
	BuyFeeBps  *uint32 `json:"buyFeeBps"`
	SellFeeBps *uint32 `json:"sellFeeBps"`
}

func (s *Server) handleSetFees(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setFeesParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	updated, err := s.node.UpdateParams(func(p *launch.Params) error {
		if params.BuyFeeBps != nil {
			p.Fees.BuyBps = *params.BuyFeeBps
		}
		if params.SellFeeBps != nil {
			p.Fees.SellBps = *params.SellFeeBps
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, paramsResult(updated))
}

type setCurveParams struct {
	VirtualBaseReserve string `json:"virtualBaseReserve"`
	VirtualUnitReserve string `json:"virtualUnitReserve"`
	MaxSupply          string `json:"maxSupply"`
	LaunchFeePLS       string `json:"launchFeePls"`
}

func (s *Server) handleSetCurve(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setCurveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	updated, err := s.node.UpdateParams(func(p *launch.Params) error {
		if v, err := parseOptionalAmount(params.VirtualBaseReserve); err != nil {
			return err
		} else if v != nil {
			p.VirtualBaseReserve = v
		}
		if v, err := parseOptionalAmount(params.VirtualUnitReserve); err != nil {
			return err
		} else if v != nil {
			p.VirtualUnitReserve = v
		}
		if v, err := parseOptionalAmount(params.MaxSupply); err != nil {
			return err
		} else if v != nil {
			p.MaxSupply = v
		}
		if v, err := parseOptionalAmount(params.LaunchFeePLS); err != nil {
			return err
		} else if v != nil {
			p.LaunchFeePLS = v
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, paramsResult(updated))
}

type setAllocationParams struct {
	BurnBps         *uint32 `json:"burnBps"`
	PoolABps        *uint32 `json:"poolABps"`
	PoolBBps        *uint32 `json:"poolBBps"`
	RewardBps       *uint32 `json:"rewardBps"`
	MinSeedRatioBps *uint32 `json:"minSeedRatioBps"`
}

func (s *Server) handleSetAllocation(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setAllocationParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	updated, err := s.node.UpdateParams(func(p *launch.Params) error {
		if params.BurnBps != nil {
			p.BurnBps = *params.BurnBps
		}
		if params.PoolABps != nil {
			p.PoolABps = *params.PoolABps
		}
		if params.PoolBBps != nil {
			p.PoolBBps = *params.PoolBBps
		}
		if params.RewardBps != nil {
			p.RewardBps = *params.RewardBps
		}
		if params.MinSeedRatioBps != nil {
			p.MinSeedRatioBps = *params.MinSeedRatioBps
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, paramsResult(updated))
}

type setThresholdParams struct {
	GraduationThreshold string `json:"graduationThreshold"`
}

func (s *Server) handleSetThreshold(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setThresholdParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	threshold, err := parseAmount(params.GraduationThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	updated, err := s.node.UpdateParams(func(p *launch.Params) error {
		p.GraduationThreshold = threshold
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, paramsResult(updated))
}

type setTreasuryParams struct {
	Treasury         string `json:"treasury"`
	BurnSink         string `json:"burnSink"`
	ReceiptRecipient string `json:"receiptRecipient"`
}

func (s *Server) handleSetTreasury(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setTreasuryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	updated, err := s.node.UpdateParams(func(p *launch.Params) error {
		if params.Treasury != "" {
			addr, err := parseAddress(params.Treasury)
			if err != nil {
				return err
			}
			p.Treasury = addr
		}
		if params.BurnSink != "" {
			addr, err := parseAddress(params.BurnSink)
			if err != nil {
				return err
			}
			p.BurnSink = addr
		}
		if params.ReceiptRecipient != "" {
			addr, err := parseAddress(params.ReceiptRecipient)
			if err != nil {
				return err
			}
			p.ReceiptRecipient = addr
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, paramsResult(updated))
}

type setOverridesParams struct {
	Token               uint64  `json:"token"`
	BuyFeeBps           *uint32 `json:"buyFeeBps"`
	SellFeeBps          *uint32 `json:"sellFeeBps"`
	GraduationThreshold string  `json:"graduationThreshold"`
	LaunchFeePLS        string  `json:"launchFeePls"`
}

func (s *Server) handleSetOverrides(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setOverridesParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	overrides := &launch.TokenOverrides{
		BuyFeeBps:  params.BuyFeeBps,
		SellFeeBps: params.SellFeeBps,
	}
	threshold, err := parseOptionalAmount(params.GraduationThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	overrides.GraduationThreshold = threshold
	launchFee, err := parseOptionalAmount(params.LaunchFeePLS)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	overrides.LaunchFeePLS = launchFee
	if err := s.node.SetTokenOverrides(params.Token, overrides); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"token": params.Token, "updated": true})
}

type setFeeExemptParams struct {
	Address string `json:"address"`
	Exempt  bool   `json:"exempt"`
}

func (s *Server) handleSetFeeExempt(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setFeeExemptParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetFeeExempt(addr, params.Exempt); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"address": params.Address, "exempt": params.Exempt})
}
