package service

import (
	"context"
	"time"

	"domain_market/model"

	"gorm.io/gorm"
)

// StatsService 统计查询服务接口（纯读视图，不做任何状态变更）
type StatsService interface {
	TradeCount(ctx context.Context, domainID uint64) (int64, error)
	ActiveListings(ctx context.Context) ([]model.Listing, error)
	OpenPools(ctx context.Context) ([]model.BuyPool, error)
}

// statsService 统计查询实现
type statsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatsService 创建统计查询服务
func NewStatsService(db *gorm.DB) StatsService {
	return &statsService{
		db:  db,
		now: time.Now,
	}
}

// TradeCount 域名累计成交次数（每笔成交恰好一条记录，计数即行数）
func (s *statsService) TradeCount(ctx context.Context, domainID uint64) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.TradeRecord{}).
		Where("domain_id = ?", domainID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ActiveListings 全部生效挂牌（复用model.ActiveListingScope，与结算路径同一谓词）
func (s *statsService) ActiveListings(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := s.db.WithContext(ctx).
		Scopes(model.ActiveListingScope(s.now())).
		Order("domain_id ASC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// OpenPools 全部开放拼单（复用model.OpenPoolScope，与join路径同一谓词）
func (s *statsService) OpenPools(ctx context.Context) ([]model.BuyPool, error) {
	var pools []model.BuyPool
	if err := s.db.WithContext(ctx).
		Scopes(model.OpenPoolScope(s.now())).
		Order("domain_id ASC").
		Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}
