package service

import (
	"context"
	"errors"
	"time"

	"domain_market/model"
	"domain_market/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegistryService 域名注册处服务接口（所有权唯一真源）
type RegistryService interface {
	Mint(ctx context.Context, req MintReq) (uint64, error)
	OwnerOf(ctx context.Context, domainID uint64) (string, error)
	Transfer(ctx context.Context, req TransferReq) error
	GetDomain(ctx context.Context, domainID uint64) (*model.Domain, error)
}

// registryService 域名注册处实现
type registryService struct {
	db         *gorm.DB
	locker     utils.DomainLocker
	minterAddr string
}

// NewRegistryService 创建注册处服务
func NewRegistryService(db *gorm.DB, locker utils.DomainLocker, minterAddr string) RegistryService {
	return &registryService{
		db:         db,
		locker:     locker,
		minterAddr: minterAddr,
	}
}

// MintReq 铸造请求
type MintReq struct {
	MinterAddr  string `json:"minter_addr"`  // 调用者，必须是授权铸造者
	OwnerAddr   string `json:"owner_addr"`   // 新域名的初始持有者
	MetadataURI string `json:"metadata_uri"` // 元数据指针（外部存储）
}

// TransferReq 直接转让请求
type TransferReq struct {
	ActorAddr string `json:"actor_addr"` // 调用者，必须是当前持有者
	ToAddr    string `json:"to_addr"`    // 受让人
	DomainID  uint64 `json:"domain_id"`
}

// Mint 铸造新域名（仅授权铸造者可调用，ID单调递增、永不复用）
func (s *registryService) Mint(ctx context.Context, req MintReq) (uint64, error) {
	if req.MinterAddr != s.minterAddr {
		return 0, ErrNotMinter
	}
	if !utils.IsValidAddr(req.OwnerAddr) {
		return 0, ErrInvalidAddr
	}

	domain := model.Domain{
		OwnerAddr:   req.OwnerAddr,
		MetadataURI: req.MetadataURI,
	}
	if err := s.db.WithContext(ctx).Create(&domain).Error; err != nil {
		utils.Logger.Error("铸造域名失败", zap.String("owner_addr", req.OwnerAddr), zap.Error(err))
		return 0, err
	}

	utils.Logger.Info("域名铸造成功", zap.Uint64("domain_id", domain.ID), zap.String("owner_addr", req.OwnerAddr))
	return domain.ID, nil
}

// OwnerOf 查询域名当前持有者
func (s *registryService) OwnerOf(ctx context.Context, domainID uint64) (string, error) {
	domain, err := s.GetDomain(ctx, domainID)
	if err != nil {
		return "", err
	}
	return domain.OwnerAddr, nil
}

// GetDomain 查询域名详情
func (s *registryService) GetDomain(ctx context.Context, domainID uint64) (*model.Domain, error) {
	var domain model.Domain
	if err := s.db.WithContext(ctx).Where("id = ?", domainID).First(&domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, err
	}
	return &domain, nil
}

// Transfer 直接转让域名（不经过市场，调用者必须是当前持有者）
func (s *registryService) Transfer(ctx context.Context, req TransferReq) error {
	if !utils.IsValidAddr(req.ToAddr) {
		return ErrInvalidAddr
	}

	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transferDomainTx(tx, req.ActorAddr, req.ToAddr, req.DomainID)
	})
}

// -------------- 事务内共用 --------------

// getDomainTx 事务内查询域名
func getDomainTx(tx *gorm.DB, domainID uint64) (*model.Domain, error) {
	var domain model.Domain
	if err := tx.Where("id = ?", domainID).First(&domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, err
	}
	return &domain, nil
}

// transferDomainTx 域名所有权变更的唯一通道
// from必须是当前持有者，否则拒绝；所有结算路径（挂牌购买/接受报价/碎片化/拼单）一律经此
func transferDomainTx(tx *gorm.DB, from, to string, domainID uint64) error {
	domain, err := getDomainTx(tx, domainID)
	if err != nil {
		return err
	}
	if domain.OwnerAddr != from {
		return ErrNotOwner
	}

	if err := tx.Model(domain).Update("owner_addr", to).Error; err != nil {
		return err
	}

	utils.Logger.Info("域名所有权变更",
		zap.Uint64("domain_id", domainID),
		zap.String("from", from),
		zap.String("to", to))
	return nil
}

// appendTradeTx 事务内追加成交记录（每笔成交恰好一条，兼作成交计数）
func appendTradeTx(tx *gorm.DB, now time.Time, domainID uint64, seller, buyer string, price int64, source model.TradeSource) (*model.TradeRecord, error) {
	record := model.TradeRecord{
		TradeNo:    utils.GenerateTradeNo(),
		DomainID:   domainID,
		SellerAddr: seller,
		BuyerAddr:  buyer,
		Price:      price,
		Source:     source,
		TradeTime:  now,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
