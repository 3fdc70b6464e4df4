package handler

import (
	"strconv"

	"domain_market/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 留言与统计处理器
type MessageHandler struct {
	messageService service.MessageService
	statsService   service.StatsService
}

// NewMessageHandler 创建留言与统计处理器
func NewMessageHandler(messageService service.MessageService, statsService service.StatsService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		statsService:   statsService,
	}
}

// AppendMessage 追加留言（同一域名内外部ID去重）
func (h *MessageHandler) AppendMessage(c *gin.Context) {
	var req service.AppendMessageReq
	if !bindAndVerify(c, &req, func() string { return req.SenderAddr }) {
		return
	}

	if err := h.messageService.Append(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// GetMessages 查询域名留言
func (h *MessageHandler) GetMessages(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	messages, err := h.messageService.GetMessages(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"list": messages})
}

// GetTradeCount 查询域名累计成交次数
func (h *MessageHandler) GetTradeCount(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	count, err := h.statsService.TradeCount(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"trade_count": count})
}

// GetActiveListings 查询全部生效挂牌
func (h *MessageHandler) GetActiveListings(c *gin.Context) {
	listings, err := h.statsService.ActiveListings(c.Request.Context())
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"list": listings})
}

// GetOpenPools 查询全部开放拼单
func (h *MessageHandler) GetOpenPools(c *gin.Context) {
	pools, err := h.statsService.OpenPools(c.Request.Context())
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"list": pools})
}
