package handler

import (
	"strconv"

	"domain_market/service"

	"github.com/gin-gonic/gin"
)

// DomainHandler 域名注册处处理器
type DomainHandler struct {
	registryService service.RegistryService
}

// NewDomainHandler 创建域名处理器
func NewDomainHandler(registryService service.RegistryService) *DomainHandler {
	return &DomainHandler{
		registryService: registryService,
	}
}

// Mint 铸造新域名（仅授权铸造者）
func (h *DomainHandler) Mint(c *gin.Context) {
	var req service.MintReq
	if !bindAndVerify(c, &req, func() string { return req.MinterAddr }) {
		return
	}

	domainID, err := h.registryService.Mint(c.Request.Context(), req)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, gin.H{"domain_id": domainID})
}

// Transfer 直接转让域名
func (h *DomainHandler) Transfer(c *gin.Context) {
	var req service.TransferReq
	if !bindAndVerify(c, &req, func() string { return req.ActorAddr }) {
		return
	}

	if err := h.registryService.Transfer(c.Request.Context(), req); err != nil {
		respErr(c, err)
		return
	}

	respOK(c, nil)
}

// GetDomain 查询域名详情（含当前持有者）
func (h *DomainHandler) GetDomain(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respErr(c, err)
		return
	}

	domain, err := h.registryService.GetDomain(c.Request.Context(), domainID)
	if err != nil {
		respErr(c, err)
		return
	}

	respOK(c, domain)
}
