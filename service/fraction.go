package service

import (
	"context"
	"errors"

	"domain_market/model"
	"domain_market/payment"
	"domain_market/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FractionService 份额服务接口（域名碎片化与份额买卖）
type FractionService interface {
	Fractionalize(ctx context.Context, req FractionalizeReq) error
	BuyFraction(ctx context.Context, req BuyFractionReq) (int64, error)
	GetFractions(ctx context.Context, domainID uint64) ([]model.Fraction, error)
}

// fractionService 份额服务实现
type fractionService struct {
	db          *gorm.DB
	rail        payment.Rail
	locker      utils.DomainLocker
	custodyAddr string
}

// NewFractionService 创建份额服务
func NewFractionService(db *gorm.DB, rail payment.Rail, locker utils.DomainLocker, custodyAddr string) FractionService {
	return &fractionService{
		db:          db,
		rail:        rail,
		locker:      locker,
		custodyAddr: custodyAddr,
	}
}

// FractionalizeReq 碎片化请求
type FractionalizeReq struct {
	ActorAddr   string `json:"actor_addr"` // 必须是当前持有者
	DomainID    uint64 `json:"domain_id"`
	TotalShares int64  `json:"total_shares"` // 总份额，>0，一经确定不可变
}

// BuyFractionReq 购买份额请求
type BuyFractionReq struct {
	BuyerAddr string `json:"buyer_addr"`
	DomainID  uint64 `json:"domain_id"`
	Shares    int64  `json:"shares"` // 购买份额数，>0
}

// Fractionalize 碎片化：域名过户给托管账户，发起人持有全部份额
// 每个域名只能碎片化一次；份额归并退出不在本服务范围内
func (s *fractionService) Fractionalize(ctx context.Context, req FractionalizeReq) error {
	if req.TotalShares <= 0 {
		return ErrInvalidShares
	}

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

		var count int64
		if err := tx.Model(&model.Fraction{}).Where("domain_id = ?", req.DomainID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyFractionalized
		}

		// 域名进入托管，注册处持有者变为托管账户
		if err := transferDomainTx(tx, req.ActorAddr, s.custodyAddr, req.DomainID); err != nil {
			return err
		}

		fraction := model.Fraction{
			DomainID:    req.DomainID,
			Position:    0, // 主持有人
			HolderAddr:  req.ActorAddr,
			Shares:      req.TotalShares,
			TotalShares: req.TotalShares,
		}
		if err := tx.Create(&fraction).Error; err != nil {
			return err
		}

		utils.Logger.Info("域名碎片化",
			zap.Uint64("domain_id", req.DomainID),
			zap.String("holder_addr", req.ActorAddr),
			zap.Int64("total_shares", req.TotalShares))
		return nil
	})
}

// BuyFraction 购买份额：定价 = 挂牌价 * 份额 / 总份额，整数截断
// 截断意味着零散买齐全部份额的总付款可能低于挂牌价
// 只动份额账本，不动注册处所有权；返回实际成交价
func (s *fractionService) BuyFraction(ctx context.Context, req BuyFractionReq) (int64, error) {
	if req.Shares <= 0 {
		return 0, ErrInvalidShares
	}

	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return 0, err
	}
	defer release()

	var price int64

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var primary model.Fraction
		if err := tx.Where("domain_id = ? AND position = 0", req.DomainID).First(&primary).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFractionalized
			}
			return err
		}
		if primary.Shares < req.Shares {
			return ErrInsufficientShares
		}

		// 参考价取挂牌记录的存量价格（无挂牌记录视为0，按0成交——不报错）
		var listingPrice int64
		var listing model.Listing
		err := tx.Where("domain_id = ?", req.DomainID).First(&listing).Error
		switch {
		case err == nil:
			listingPrice = listing.Price
		case errors.Is(err, gorm.ErrRecordNotFound):
			listingPrice = 0
		default:
			return err
		}

		price = listingPrice * req.Shares / primary.TotalShares

		if err := s.rail.DebitAndCredit(ctx, req.BuyerAddr, primary.HolderAddr, price); err != nil {
			return err
		}

		// 份额只在持仓行之间移动，总量守恒
		if err := tx.Model(&primary).Update("shares", primary.Shares-req.Shares).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Fraction{}).Where("domain_id = ?", req.DomainID).Count(&count).Error; err != nil {
			return err
		}

		fraction := model.Fraction{
			DomainID:    req.DomainID,
			Position:    int(count),
			HolderAddr:  req.BuyerAddr,
			Shares:      req.Shares,
			TotalShares: primary.TotalShares,
		}
		return tx.Create(&fraction).Error
	})
	if err != nil {
		return 0, err
	}

	return price, nil
}

// GetFractions 查询域名份额持仓列表（下标0为主持有人）
func (s *fractionService) GetFractions(ctx context.Context, domainID uint64) ([]model.Fraction, error) {
	var fractions []model.Fraction
	if err := s.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("position ASC").
		Find(&fractions).Error; err != nil {
		return nil, err
	}
	return fractions, nil
}
