package model

import (
	"time"

	"gorm.io/gorm"
)

// BuyPool 拼单购买表（每个域名至多一条，create会整体覆盖旧记录）
// fulfilled 是单向闸门：一旦置true记录不再变化
type BuyPool struct {
	ID              uint64    `gorm:"primaryKey;comment:拼单ID"`
	DomainID        uint64    `gorm:"uniqueIndex;comment:关联域名ID"`
	InitiatorAddr   string    `gorm:"comment:发起人钱包地址（成交时必须仍是域名持有者）"`
	TotalPrice      int64     `gorm:"comment:目标总价（最小支付单位）"`
	MinParticipants int       `gorm:"comment:最少参与人数（>1）"`
	Participants    int       `gorm:"comment:当前参与人数"`
	TotalRaised     int64     `gorm:"comment:累计出资（运行时累加，成交前会重算核对）"`
	ExpiresAt       time.Time `gorm:"comment:过期时间"`
	Fulfilled       bool      `gorm:"comment:是否已成交"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 表名
func (p *BuyPool) TableName() string {
	return "buy_pools"
}

// IsOpen 拼单是否开放：未成交 且 未过期
// 唯一的开放判定，SQL侧对应OpenPoolScope，两处必须保持一致
func (p *BuyPool) IsOpen(now time.Time) bool {
	return !p.Fulfilled && p.ExpiresAt.After(now)
}

// OpenPoolScope 开放拼单的SQL过滤（与BuyPool.IsOpen同一谓词）
func OpenPoolScope(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("fulfilled = ? AND expires_at > ?", false, now)
	}
}

// PoolContribution 拼单出资表（每人每拼单至多一条，重复出资直接拒绝）
type PoolContribution struct {
	ID              uint64    `gorm:"primaryKey;comment:出资记录ID"`
	PoolID          uint64    `gorm:"index:idx_pool_participant,unique,priority:1;comment:关联拼单ID"`
	ParticipantAddr string    `gorm:"index:idx_pool_participant,unique,priority:2;comment:参与者钱包地址"`
	Amount          int64     `gorm:"comment:出资金额（最小支付单位）"`
	CreatedAt       time.Time `gorm:"comment:出资时间"`
}

// TableName 表名
func (c *PoolContribution) TableName() string {
	return "pool_contributions"
}
