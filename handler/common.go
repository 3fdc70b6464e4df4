package handler

import (
	"encoding/json"
	"net/http"

	"domain_market/config"
	"domain_market/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bindAndVerify 解析请求体；开启签名校验时验证X-Wallet-Signature（对原始请求体签名）
// actor返回请求中声明的操作者地址
func bindAndVerify(c *gin.Context, req interface{}, actor func() string) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return false
	}

	if err := json.Unmarshal(body, req); err != nil {
		utils.Logger.Error("参数绑定失败", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return false
	}

	if config.GlobalConfig != nil && config.GlobalConfig.SignatureCheck {
		signature := c.GetHeader("X-Wallet-Signature")
		if !utils.VerifySignature(actor(), string(body), signature) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": 401,
				"msg":  "签名校验失败",
			})
			return false
		}
	}

	return true
}

// respOK 成功响应
func respOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "success",
		"data": data,
	})
}

// respErr 业务失败响应（全部是拒绝，无半程效果）
func respErr(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code": 500,
		"msg":  err.Error(),
	})
}
