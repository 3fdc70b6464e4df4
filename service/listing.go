package service

import (
	"context"
	"errors"
	"time"

	"domain_market/model"
	"domain_market/payment"
	"domain_market/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListingService 挂牌服务接口（一口价出售）
type ListingService interface {
	List(ctx context.Context, req ListReq) error
	Cancel(ctx context.Context, req CancelListingReq) error
	Buy(ctx context.Context, req BuyListingReq) (string, error)
	GetListing(ctx context.Context, domainID uint64) (*model.Listing, error)
}

// listingService 挂牌服务实现
type listingService struct {
	db     *gorm.DB
	rail   payment.Rail
	locker utils.DomainLocker
	now    func() time.Time
}

// NewListingService 创建挂牌服务
func NewListingService(db *gorm.DB, rail payment.Rail, locker utils.DomainLocker) ListingService {
	return &listingService{
		db:     db,
		rail:   rail,
		locker: locker,
		now:    time.Now,
	}
}

// ListReq 挂牌请求（重复挂牌会覆盖旧挂牌）
type ListReq struct {
	ActorAddr   string `json:"actor_addr"` // 必须是当前持有者
	DomainID    uint64 `json:"domain_id"`
	Price       int64  `json:"price"`        // 最小支付单位，>0
	DurationSec int64  `json:"duration_sec"` // 有效期秒数，>0
}

// CancelListingReq 取消挂牌请求
type CancelListingReq struct {
	ActorAddr string `json:"actor_addr"` // 必须是当前持有者
	DomainID  uint64 `json:"domain_id"`
}

// BuyListingReq 购买请求
type BuyListingReq struct {
	BuyerAddr string `json:"buyer_addr"`
	DomainID  uint64 `json:"domain_id"`
}

// List 挂牌出售（仅当前持有者；已有挂牌时覆盖并记录新旧价差）
func (s *listingService) List(ctx context.Context, req ListReq) error {
	if req.Price <= 0 {
		return ErrInvalidPrice
	}
	if req.DurationSec <= 0 {
		return ErrInvalidDuration
	}

	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return err
	}
	defer release()

	now := s.now()
	expiresAt := now.Add(time.Duration(req.DurationSec) * time.Second)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		domain, err := getDomainTx(tx, req.DomainID)
		if err != nil {
			return err
		}
		if domain.OwnerAddr != req.ActorAddr {
			return ErrNotOwner
		}

		var listing model.Listing
		err = tx.Where("domain_id = ?", req.DomainID).First(&listing).Error
		switch {
		case err == nil:
			// 覆盖旧挂牌，价差仅用于观测
			utils.Logger.Info("重新挂牌",
				zap.Uint64("domain_id", req.DomainID),
				zap.Int64("old_price", listing.Price),
				zap.Int64("new_price", req.Price))
			return tx.Model(&listing).Updates(map[string]interface{}{
				"seller_addr": req.ActorAddr,
				"price":       req.Price,
				"expires_at":  expiresAt,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			listing = model.Listing{
				DomainID:   req.DomainID,
				SellerAddr: req.ActorAddr,
				Price:      req.Price,
				ExpiresAt:  expiresAt,
			}
			return tx.Create(&listing).Error
		default:
			return err
		}
	})
}

// Cancel 取消挂牌（仅当前持有者，且挂牌必须存在）
func (s *listingService) Cancel(ctx context.Context, req CancelListingReq) error {
	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		domain, err := getDomainTx(tx, req.DomainID)
		if err != nil {
			return err
		}
		if domain.OwnerAddr != req.ActorAddr {
			return ErrNotOwner
		}

		var listing model.Listing
		if err := tx.Where("domain_id = ?", req.DomainID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotListed
			}
			return err
		}
		if listing.Price <= 0 {
			return ErrNotListed
		}

		return tx.Delete(&listing).Error
	})
}

// Buy 按挂牌价购买：付款、过户、记成交、清挂牌必须同事务全做或全不做
func (s *listingService) Buy(ctx context.Context, req BuyListingReq) (string, error) {
	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return "", err
	}
	defer release()

	now := s.now()
	var record *model.TradeRecord

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing model.Listing
		if err := tx.Where("domain_id = ?", req.DomainID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotListed
			}
			return err
		}
		if listing.Price <= 0 {
			return ErrNotListed
		}
		if !listing.ExpiresAt.After(now) {
			return ErrListingExpired
		}

		// 挂牌后所有权可能已变动，付款前先确认卖家仍持有
		domain, err := getDomainTx(tx, req.DomainID)
		if err != nil {
			return err
		}
		if domain.OwnerAddr != listing.SellerAddr {
			return ErrNotOwner
		}

		// 付款与过户同一原子步骤：支付失败则所有权不得变动
		if err := s.rail.DebitAndCredit(ctx, req.BuyerAddr, listing.SellerAddr, listing.Price); err != nil {
			return err
		}

		if err := transferDomainTx(tx, listing.SellerAddr, req.BuyerAddr, req.DomainID); err != nil {
			return err
		}

		record, err = appendTradeTx(tx, now, req.DomainID, listing.SellerAddr, req.BuyerAddr, listing.Price, model.TradeSourceListing)
		if err != nil {
			return err
		}

		return tx.Delete(&listing).Error
	})
	if err != nil {
		return "", err
	}

	// 事务已提交，发布成交事件（失败只记录，不影响账本）
	utils.PublishTradeEvent(ctx, utils.TradeEvent{
		TradeNo:    record.TradeNo,
		DomainID:   record.DomainID,
		SellerAddr: record.SellerAddr,
		BuyerAddr:  record.BuyerAddr,
		Price:      record.Price,
		Source:     string(record.Source),
	})

	return record.TradeNo, nil
}

// GetListing 查询域名当前挂牌
func (s *listingService) GetListing(ctx context.Context, domainID uint64) (*model.Listing, error) {
	var listing model.Listing
	if err := s.db.WithContext(ctx).Where("domain_id = ?", domainID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotListed
		}
		return nil, err
	}
	return &listing, nil
}
