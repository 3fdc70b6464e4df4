package model

import (
	"time"
)

// Domain 域名资产表（所有权唯一真源）
// owner_addr 只能经注册处的统一过户通道修改，其他组件一律只读
type Domain struct {
	ID          uint64    `gorm:"primaryKey;comment:域名ID（单调递增，永不复用）"`
	OwnerAddr   string    `gorm:"index;comment:当前持有者钱包地址"`
	MetadataURI string    `gorm:"comment:元数据指针（外部存储，核心不解析）"`
	CreatedAt   time.Time `gorm:"comment:铸造时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

// TableName 表名
func (d *Domain) TableName() string {
	return "domains"
}
