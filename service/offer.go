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

// OfferService 报价服务接口（买方出价，持有者择优接受）
type OfferService interface {
	Make(ctx context.Context, req MakeOfferReq) (int, error)
	Accept(ctx context.Context, req AcceptOfferReq) (string, error)
	Cancel(ctx context.Context, req CancelOfferReq) error
	GetOffers(ctx context.Context, domainID uint64) ([]model.Offer, error)
}

// offerService 报价服务实现
type offerService struct {
	db     *gorm.DB
	rail   payment.Rail
	locker utils.DomainLocker
	now    func() time.Time
}

// NewOfferService 创建报价服务
func NewOfferService(db *gorm.DB, rail payment.Rail, locker utils.DomainLocker) OfferService {
	return &offerService{
		db:     db,
		rail:   rail,
		locker: locker,
		now:    time.Now,
	}
}

// MakeOfferReq 发起报价请求
type MakeOfferReq struct {
	BuyerAddr   string `json:"buyer_addr"`
	DomainID    uint64 `json:"domain_id"`
	Price       int64  `json:"price"`        // 最小支付单位，>0
	DurationSec int64  `json:"duration_sec"` // 有效期秒数，>0
}

// AcceptOfferReq 接受报价请求
type AcceptOfferReq struct {
	OwnerAddr string `json:"owner_addr"` // 必须是当前持有者（接受时重查，不看报价产生时）
	DomainID  uint64 `json:"domain_id"`
	Position  int    `json:"position"` // 报价下标
}

// CancelOfferReq 撤销报价请求
type CancelOfferReq struct {
	BuyerAddr string `json:"buyer_addr"` // 必须是报价发起人
	DomainID  uint64 `json:"domain_id"`
	Position  int    `json:"position"`
}

// Make 发起报价：先惰性翻转该域名已过期报价的Active标记，再追加新报价
// 报价只追加从不删除，下标终生稳定
func (s *offerService) Make(ctx context.Context, req MakeOfferReq) (int, error) {
	if req.Price <= 0 {
		return 0, ErrInvalidPrice
	}
	if req.DurationSec <= 0 {
		return 0, ErrInvalidDuration
	}

	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return 0, err
	}
	defer release()

	now := s.now()
	position := 0

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getDomainTx(tx, req.DomainID); err != nil {
			return err
		}

		// 惰性过期清扫：只翻标记，不删除（保证下标稳定），纯观测用途
		if err := tx.Model(&model.Offer{}).
			Where("domain_id = ? AND active = ? AND expires_at <= ?", req.DomainID, true, now).
			Update("active", false).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Offer{}).Where("domain_id = ?", req.DomainID).Count(&count).Error; err != nil {
			return err
		}
		position = int(count)

		offer := model.Offer{
			DomainID:  req.DomainID,
			Position:  position,
			BuyerAddr: req.BuyerAddr,
			Price:     req.Price,
			ExpiresAt: now.Add(time.Duration(req.DurationSec) * time.Second),
			Active:    true,
		}
		return tx.Create(&offer).Error
	})
	if err != nil {
		return 0, err
	}

	return position, nil
}

// Accept 接受报价：所有权在接受时重查（挂出报价后域名可能已转手）
// 付款买家→当前持有者、过户持有者→买家、记成交、灭报价为一个原子步骤
func (s *offerService) Accept(ctx context.Context, req AcceptOfferReq) (string, error) {
	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return "", err
	}
	defer release()

	now := s.now()
	var record *model.TradeRecord

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer model.Offer
		if err := tx.Where("domain_id = ? AND position = ?", req.DomainID, req.Position).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if !offer.Active {
			return ErrOfferInactive
		}
		// Active标记可能还没被惰性清扫翻转，截止时间必须重查
		if offer.IsExpired(now) {
			return ErrOfferExpired
		}

		domain, err := getDomainTx(tx, req.DomainID)
		if err != nil {
			return err
		}
		if domain.OwnerAddr != req.OwnerAddr {
			return ErrNotOwner
		}

		if err := s.rail.DebitAndCredit(ctx, offer.BuyerAddr, req.OwnerAddr, offer.Price); err != nil {
			return err
		}

		if err := transferDomainTx(tx, req.OwnerAddr, offer.BuyerAddr, req.DomainID); err != nil {
			return err
		}

		if err := tx.Model(&offer).Update("active", false).Error; err != nil {
			return err
		}

		record, err = appendTradeTx(tx, now, req.DomainID, req.OwnerAddr, offer.BuyerAddr, offer.Price, model.TradeSourceOffer)
		return err
	})
	if err != nil {
		return "", err
	}

	utils.PublishTradeEvent(ctx, utils.TradeEvent{
		TradeNo:    record.TradeNo,
		DomainID:   record.DomainID,
		SellerAddr: record.SellerAddr,
		BuyerAddr:  record.BuyerAddr,
		Price:      record.Price,
		Source:     string(record.Source),
	})

	utils.Logger.Info("报价成交",
		zap.Uint64("domain_id", req.DomainID),
		zap.Int("position", req.Position),
		zap.String("trade_no", record.TradeNo))
	return record.TradeNo, nil
}

// Cancel 撤销报价（仅报价发起人，且报价仍生效）
func (s *offerService) Cancel(ctx context.Context, req CancelOfferReq) error {
	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer model.Offer
		if err := tx.Where("domain_id = ? AND position = ?", req.DomainID, req.Position).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if offer.BuyerAddr != req.BuyerAddr {
			return ErrNotOfferBuyer
		}
		if !offer.Active {
			return ErrOfferInactive
		}

		return tx.Model(&offer).Update("active", false).Error
	})
}

// GetOffers 查询域名全部报价（按下标排列，含已失效的）
func (s *offerService) GetOffers(ctx context.Context, domainID uint64) ([]model.Offer, error) {
	var offers []model.Offer
	if err := s.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("position ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}
