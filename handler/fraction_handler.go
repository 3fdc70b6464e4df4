package handler

import (
	"strconv"

	"domain_market/service"

	"github.com/gin-gonic/gin"
)

// FractionHandler 份额与拼单处理器
type FractionHandler struct {
	fractionService service.FractionService
	poolService     service.PoolService
}

// NewFractionHandler 创建份额与拼单处理器
func NewFractionHandler(fractionService service.FractionService, poolService service.PoolService) *FractionHandler {
	return &FractionHandler{
		fractionService: fractionService,
		poolService:     poolService,
	}
}

// -------------- 份额 --------------

// Fractionalize 碎片化域名
func (h *FractionHandler) Fractionalize(c *gin.Context) {
	var req service.FractionalizeReq
	if !bindAndVerify(c, &req, func() string { return req.ActorAddr }) {
		return
	}

	if err := h.fractionService.Fractionalize(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// BuyFraction 购买份额
func (h *FractionHandler) BuyFraction(c *gin.Context) {
	var req service.BuyFractionReq
	if !bindAndVerify(c, &req, func() string { return req.BuyerAddr }) {
		return
	}

	price, err := h.fractionService.BuyFraction(c.Request.Context(), req)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"price": price})
}

// GetFractions 查询域名份额持仓
func (h *FractionHandler) GetFractions(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	fractions, err := h.fractionService.GetFractions(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"list": fractions})
}

// -------------- 拼单 --------------

// CreatePool 发起拼单
func (h *FractionHandler) CreatePool(c *gin.Context) {
	var req service.CreatePoolReq
	if !bindAndVerify(c, &req, func() string { return req.InitiatorAddr }) {
		return
	}

	if err := h.poolService.Create(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// JoinPool 参与拼单（本次加入可能同步触发成交）
func (h *FractionHandler) JoinPool(c *gin.Context) {
	var req service.JoinPoolReq
	if !bindAndVerify(c, &req, func() string { return req.ParticipantAddr }) {
		return
	}

	fulfilled, err := h.poolService.Join(c.Request.Context(), req)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"fulfilled": fulfilled})
}

// GetPool 查询拼单详情
func (h *FractionHandler) GetPool(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	detail, err := h.poolService.GetPool(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, detail)
}
