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

// PoolService 拼单服务接口（多人凑资购买，达到门槛同步成交）
type PoolService interface {
	Create(ctx context.Context, req CreatePoolReq) error
	Join(ctx context.Context, req JoinPoolReq) (bool, error)
	GetPool(ctx context.Context, domainID uint64) (*PoolDetail, error)
}

// poolService 拼单服务实现
type poolService struct {
	db          *gorm.DB
	rail        payment.Rail
	locker      utils.DomainLocker
	custodyAddr string
	now         func() time.Time
}

// NewPoolService 创建拼单服务
func NewPoolService(db *gorm.DB, rail payment.Rail, locker utils.DomainLocker, custodyAddr string) PoolService {
	return &poolService{
		db:          db,
		rail:        rail,
		locker:      locker,
		custodyAddr: custodyAddr,
		now:         time.Now,
	}
}

// CreatePoolReq 发起拼单请求（会整体覆盖该域名的旧拼单）
type CreatePoolReq struct {
	InitiatorAddr   string `json:"initiator_addr"`
	DomainID        uint64 `json:"domain_id"`
	TotalPrice      int64  `json:"total_price"`      // 目标总价，>0
	MinParticipants int    `json:"min_participants"` // 最少参与人数，>1
	DurationSec     int64  `json:"duration_sec"`
}

// JoinPoolReq 参与拼单请求
type JoinPoolReq struct {
	ParticipantAddr string `json:"participant_addr"`
	DomainID        uint64 `json:"domain_id"`
	Amount          int64  `json:"amount"` // 出资金额，>0，每人只能出资一次
}

// PoolDetail 拼单详情（读视图）
type PoolDetail struct {
	Pool          model.BuyPool            `json:"pool"`
	Contributions []model.PoolContribution `json:"contributions"`
}

// Create 发起拼单：覆盖旧记录，从零开始一个开放拼单
func (s *poolService) Create(ctx context.Context, req CreatePoolReq) error {
	if req.TotalPrice <= 0 {
		return ErrInvalidPrice
	}
	if req.MinParticipants <= 1 {
		return ErrInvalidMinParticipants
	}

	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return err
	}
	defer release()

	now := s.now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getDomainTx(tx, req.DomainID); err != nil {
			return err
		}

		// 覆盖旧拼单及其出资记录
		var old model.BuyPool
		err := tx.Where("domain_id = ?", req.DomainID).First(&old).Error
		switch {
		case err == nil:
			if err := tx.Where("pool_id = ?", old.ID).Delete(&model.PoolContribution{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&old).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 无旧记录
		default:
			return err
		}

		pool := model.BuyPool{
			DomainID:        req.DomainID,
			InitiatorAddr:   req.InitiatorAddr,
			TotalPrice:      req.TotalPrice,
			MinParticipants: req.MinParticipants,
			ExpiresAt:       now.Add(time.Duration(req.DurationSec) * time.Second),
		}
		return tx.Create(&pool).Error
	})
}

// Join 参与拼单。本次加入使人数达到门槛时，成交作为同一事务的一部分同步完成：
// 重算累计出资核对运行时累加值，确认发起人仍持有域名、出资达到目标价，
// 然后全额打款给发起人、域名过户进托管、fulfilled单向闸门落锁。
// 任何一步不满足，整个join连同本次出资一起回滚。
// 返回本次join是否触发了成交。
func (s *poolService) Join(ctx context.Context, req JoinPoolReq) (bool, error) {
	if req.Amount <= 0 {
		return false, ErrInvalidContribution
	}

	release, err := s.locker.LockDomain(ctx, req.DomainID)
	if err != nil {
		return false, err
	}
	defer release()

	now := s.now()
	fulfilled := false
	var record *model.TradeRecord

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool model.BuyPool
		if err := tx.Where("domain_id = ?", req.DomainID).First(&pool).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPoolNotFound
			}
			return err
		}
		if pool.Fulfilled {
			return ErrPoolFulfilled
		}
		if !pool.ExpiresAt.After(now) {
			return ErrPoolExpired
		}

		// 每人至多出资一次，重复出资拒绝而不是累加
		var dup int64
		if err := tx.Model(&model.PoolContribution{}).
			Where("pool_id = ? AND participant_addr = ?", pool.ID, req.ParticipantAddr).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrAlreadyJoined
		}

		contribution := model.PoolContribution{
			PoolID:          pool.ID,
			ParticipantAddr: req.ParticipantAddr,
			Amount:          req.Amount,
		}
		if err := tx.Create(&contribution).Error; err != nil {
			return err
		}

		pool.Participants++
		pool.TotalRaised += req.Amount
		fulfilled = pool.Participants >= pool.MinParticipants

		var raised int64
		if fulfilled {
			// 重算累计出资，与运行时累加值对不上说明账本已被破坏
			if err := tx.Model(&model.PoolContribution{}).
				Where("pool_id = ?", pool.ID).
				Select("COALESCE(SUM(amount), 0)").
				Scan(&raised).Error; err != nil {
				return err
			}
			if raised != pool.TotalRaised {
				utils.Logger.Error("拼单不变量被破坏：累计出资与重算不一致",
					zap.Uint64("domain_id", req.DomainID),
					zap.Int64("running_total", pool.TotalRaised),
					zap.Int64("recomputed", raised))
				return ErrPoolTotalMismatch
			}

			// 建单后域名可能已转手，成交前必须确认发起人仍持有
			domain, err := getDomainTx(tx, req.DomainID)
			if err != nil {
				return err
			}
			if domain.OwnerAddr != pool.InitiatorAddr {
				return ErrNotOwner
			}
			if raised < pool.TotalPrice {
				return ErrPoolTargetNotReached
			}
		}

		// 校验全部通过后才动钱：出资进入托管
		if err := s.rail.DebitAndCredit(ctx, req.ParticipantAddr, s.custodyAddr, req.Amount); err != nil {
			return err
		}

		if fulfilled {
			// 全部募集资金付给发起人
			if err := s.rail.DebitAndCredit(ctx, s.custodyAddr, pool.InitiatorAddr, raised); err != nil {
				// 打款失败时退回本次出资再整体回滚
				if refundErr := s.rail.DebitAndCredit(ctx, s.custodyAddr, req.ParticipantAddr, req.Amount); refundErr != nil {
					utils.Logger.Error("拼单打款失败且退款失败",
						zap.Uint64("domain_id", req.DomainID),
						zap.String("participant_addr", req.ParticipantAddr),
						zap.Error(refundErr))
				}
				return err
			}

			if err := transferDomainTx(tx, pool.InitiatorAddr, s.custodyAddr, req.DomainID); err != nil {
				return err
			}

			pool.Fulfilled = true

			record, err = appendTradeTx(tx, now, req.DomainID, pool.InitiatorAddr, s.custodyAddr, raised, model.TradeSourcePool)
			if err != nil {
				return err
			}
		}

		return tx.Model(&pool).Updates(map[string]interface{}{
			"participants": pool.Participants,
			"total_raised": pool.TotalRaised,
			"fulfilled":    pool.Fulfilled,
		}).Error
	})
	if err != nil {
		return false, err
	}

	if fulfilled {
		utils.PublishTradeEvent(ctx, utils.TradeEvent{
			TradeNo:    record.TradeNo,
			DomainID:   record.DomainID,
			SellerAddr: record.SellerAddr,
			BuyerAddr:  record.BuyerAddr,
			Price:      record.Price,
			Source:     string(record.Source),
		})
		utils.Logger.Info("拼单成交",
			zap.Uint64("domain_id", req.DomainID),
			zap.String("trade_no", record.TradeNo),
			zap.Int64("raised", record.Price))
	}

	return fulfilled, nil
}

// GetPool 查询拼单详情（含出资列表，按加入顺序）
func (s *poolService) GetPool(ctx context.Context, domainID uint64) (*PoolDetail, error) {
	var pool model.BuyPool
	if err := s.db.WithContext(ctx).Where("domain_id = ?", domainID).First(&pool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	var contributions []model.PoolContribution
	if err := s.db.WithContext(ctx).
		Where("pool_id = ?", pool.ID).
		Order("id ASC").
		Find(&contributions).Error; err != nil {
		return nil, err
	}

	return &PoolDetail{Pool: pool, Contributions: contributions}, nil
}
