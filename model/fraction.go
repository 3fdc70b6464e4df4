package model

import (
	"time"
)

// Fraction 份额表（域名碎片化后的持仓账本）
// Position 0 恒为发起碎片化的主持有人，买份额只减主持有人、追加新行
// 同一域名所有行的 shares 之和恒等于 total_shares
type Fraction struct {
	ID          uint64    `gorm:"primaryKey;comment:份额记录ID"`
	DomainID    uint64    `gorm:"index:idx_fraction_domain_pos,unique,priority:1;comment:关联域名ID"`
	Position    int       `gorm:"index:idx_fraction_domain_pos,unique,priority:2;comment:域名内持仓下标（0为主持有人）"`
	HolderAddr  string    `gorm:"comment:持有人钱包地址"`
	Shares      int64     `gorm:"comment:当前持有份额"`
	TotalShares int64     `gorm:"comment:该域名总份额（碎片化时一次性确定，不可变）"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

// TableName 表名
func (f *Fraction) TableName() string {
	return "fractions"
}
