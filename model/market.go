package model

import (
	"time"

	"gorm.io/gorm"
)

// Listing 挂牌表（一口价出售，每个域名至多一条）
type Listing struct {
	ID         uint64    `gorm:"primaryKey;comment:挂牌ID"`
	DomainID   uint64    `gorm:"uniqueIndex;comment:关联域名ID"`
	SellerAddr string    `gorm:"comment:卖家钱包地址"`
	Price      int64     `gorm:"comment:挂牌价格（最小支付单位）"`
	ExpiresAt  time.Time `gorm:"comment:过期时间"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

// TableName 表名
func (l *Listing) TableName() string {
	return "listings"
}

// IsActive 挂牌是否生效：价格>0 且未过期
// 唯一的生效判定，SQL侧对应ActiveListingScope，两处必须保持一致
func (l *Listing) IsActive(now time.Time) bool {
	return l.Price > 0 && l.ExpiresAt.After(now)
}

// ActiveListingScope 生效挂牌的SQL过滤（与Listing.IsActive同一谓词）
func ActiveListingScope(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("price > 0 AND expires_at > ?", now)
	}
}

// Offer 报价表（买方出价，按域名维度追加，只标记失效从不删除，保证下标稳定）
type Offer struct {
	ID        uint64    `gorm:"primaryKey;comment:报价ID"`
	DomainID  uint64    `gorm:"index:idx_offer_domain_pos,unique,priority:1;comment:关联域名ID"`
	Position  int       `gorm:"index:idx_offer_domain_pos,unique,priority:2;comment:域名内报价下标（追加分配，终生不变）"`
	BuyerAddr string    `gorm:"comment:买家钱包地址"`
	Price     int64     `gorm:"comment:报价（最小支付单位）"`
	ExpiresAt time.Time `gorm:"comment:过期时间"`
	Active    bool      `gorm:"comment:是否生效（接受/撤销/惰性过期后置false）"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 表名
func (o *Offer) TableName() string {
	return "offers"
}

// IsExpired 报价是否已过截止时间（接受时必须重查，不能只信Active标记）
func (o *Offer) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// TradeSource 成交来源
type TradeSource string

const (
	TradeSourceListing TradeSource = "listing" // 一口价购买
	TradeSourceOffer   TradeSource = "offer"   // 接受报价
	TradeSourcePool    TradeSource = "pool"    // 拼单成交
)

// TradeRecord 成交记录表（最终账本，每笔成交恰好一条，兼作域名成交计数）
type TradeRecord struct {
	ID         uint64      `gorm:"primaryKey;comment:成交记录ID"`
	TradeNo    string      `gorm:"uniqueIndex;comment:成交编号"`
	DomainID   uint64      `gorm:"index;comment:关联域名ID"`
	SellerAddr string      `gorm:"comment:卖方钱包地址"`
	BuyerAddr  string      `gorm:"comment:买方钱包地址"`
	Price      int64       `gorm:"comment:成交金额（最小支付单位）"`
	Source     TradeSource `gorm:"comment:成交来源 listing/offer/pool"`
	TradeTime  time.Time   `gorm:"comment:成交时间"`
	CreatedAt  time.Time   `gorm:"comment:创建时间"`
}

// TableName 表名
func (t *TradeRecord) TableName() string {
	return "trade_records"
}
