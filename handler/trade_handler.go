package handler

import (
	"strconv"

	"domain_market/service"

	"github.com/gin-gonic/gin"
)

// TradeHandler 交易处理器（挂牌与报价）
type TradeHandler struct {
	listingService service.ListingService
	offerService   service.OfferService
}

// NewTradeHandler 创建交易处理器
func NewTradeHandler(listingService service.ListingService, offerService service.OfferService) *TradeHandler {
	return &TradeHandler{
		listingService: listingService,
		offerService:   offerService,
	}
}

// -------------- 挂牌 --------------

// CreateListing 挂牌出售
func (h *TradeHandler) CreateListing(c *gin.Context) {
	var req service.ListReq
	if !bindAndVerify(c, &req, func() string { return req.ActorAddr }) {
		return
	}

	if err := h.listingService.List(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// CancelListing 取消挂牌
func (h *TradeHandler) CancelListing(c *gin.Context) {
	var req service.CancelListingReq
	if !bindAndVerify(c, &req, func() string { return req.ActorAddr }) {
		return
	}

	if err := h.listingService.Cancel(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// BuyListing 按挂牌价购买
func (h *TradeHandler) BuyListing(c *gin.Context) {
	var req service.BuyListingReq
	if !bindAndVerify(c, &req, func() string { return req.BuyerAddr }) {
		return
	}

	tradeNo, err := h.listingService.Buy(c.Request.Context(), req)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"trade_no": tradeNo})
}

// GetListing 查询域名当前挂牌
func (h *TradeHandler) GetListing(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	listing, err := h.listingService.GetListing(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, listing)
}

// -------------- 报价 --------------

// MakeOffer 发起报价
func (h *TradeHandler) MakeOffer(c *gin.Context) {
	var req service.MakeOfferReq
	if !bindAndVerify(c, &req, func() string { return req.BuyerAddr }) {
		return
	}

	position, err := h.offerService.Make(c.Request.Context(), req)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"position": position})
}

// AcceptOffer 接受报价（仅当前持有者）
func (h *TradeHandler) AcceptOffer(c *gin.Context) {
	var req service.AcceptOfferReq
	if !bindAndVerify(c, &req, func() string { return req.OwnerAddr }) {
		return
	}

	tradeNo, err := h.offerService.Accept(c.Request.Context(), req)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"trade_no": tradeNo})
}

// CancelOffer 撤销报价（仅报价发起人）
func (h *TradeHandler) CancelOffer(c *gin.Context) {
	var req service.CancelOfferReq
	if !bindAndVerify(c, &req, func() string { return req.BuyerAddr }) {
		return
	}

	if err := h.offerService.Cancel(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// GetOffers 查询域名报价列表（下标稳定，含已失效）
func (h *TradeHandler) GetOffers(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	offers, err := h.offerService.GetOffers(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"list": offers})
}
