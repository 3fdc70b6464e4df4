package service

import "errors"

// 业务拒绝错误：全部是前置条件校验失败，不产生任何状态变化
var (
	ErrInvalidAddr    = errors.New("钱包地址不合法")
	ErrDomainNotFound = errors.New("域名不存在")
	ErrNotMinter      = errors.New("无铸造权限")
	ErrNotOwner       = errors.New("操作者不是该域名的当前持有者")

	ErrInvalidPrice    = errors.New("价格必须大于0")
	ErrInvalidDuration = errors.New("有效期必须大于0")
	ErrNotListed       = errors.New("该域名未挂牌")
	ErrListingExpired  = errors.New("挂牌已过期")

	ErrOfferNotFound = errors.New("报价不存在")
	ErrOfferInactive = errors.New("报价已失效")
	ErrOfferExpired  = errors.New("报价已过期")
	ErrNotOfferBuyer = errors.New("只有报价发起人才能撤销报价")

	ErrInvalidShares         = errors.New("份额数量必须大于0")
	ErrAlreadyFractionalized = errors.New("该域名已碎片化")
	ErrNotFractionalized     = errors.New("该域名未碎片化")
	ErrInsufficientShares    = errors.New("主持有人剩余份额不足")

	ErrInvalidMinParticipants = errors.New("最少参与人数必须大于1")
	ErrPoolNotFound           = errors.New("拼单不存在")
	ErrPoolFulfilled          = errors.New("拼单已成交")
	ErrPoolExpired            = errors.New("拼单已过期")
	ErrAlreadyJoined          = errors.New("该地址已参与过本拼单")
	ErrInvalidContribution    = errors.New("出资金额必须大于0")
	ErrPoolTargetNotReached   = errors.New("拼单出资未达到目标总价")

	ErrDuplicateMessage = errors.New("该域名下外部消息ID已存在")
)

// ErrPoolTotalMismatch 内部不变量被破坏：累计出资与逐笔重算不一致
// 正常运行永远不该出现，出现即是缺陷，必须大声暴露
var ErrPoolTotalMismatch = errors.New("拼单累计出资与重算结果不一致")
