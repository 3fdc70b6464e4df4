package model

import (
	"time"
)

// DomainMessage 域名留言表（买卖双方沟通，仅追加，按外部ID去重）
// (domain_id, external_id) 唯一：同一域名重复提交拒绝，不同域名可复用外部ID
type DomainMessage struct {
	ID         uint64    `gorm:"primaryKey;comment:留言ID"`
	DomainID   uint64    `gorm:"index:idx_msg_domain_ext,unique,priority:1;comment:关联域名ID"`
	ExternalID string    `gorm:"index:idx_msg_domain_ext,unique,priority:2;comment:外部消息ID（链下协议生成）"`
	SenderAddr string    `gorm:"comment:发送者钱包地址"`
	Content    string    `gorm:"type:text;comment:留言内容"`
	CreatedAt  time.Time `gorm:"comment:留言时间"`
}

// TableName 表名
func (m *DomainMessage) TableName() string {
	return "domain_messages"
}
