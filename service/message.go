package service

import (
	"context"
	"errors"

	"domain_market/model"

	"gorm.io/gorm"
)

// MessageService 留言服务接口（仅追加，按外部ID去重）
type MessageService interface {
	Append(ctx context.Context, req AppendMessageReq) error
	GetMessages(ctx context.Context, domainID uint64) ([]model.DomainMessage, error)
}

// messageService 留言服务实现
type messageService struct {
	db *gorm.DB
}

// NewMessageService 创建留言服务
func NewMessageService(db *gorm.DB) MessageService {
	return &messageService{db: db}
}

// AppendMessageReq 留言请求
type AppendMessageReq struct {
	SenderAddr string `json:"sender_addr"`
	DomainID   uint64 `json:"domain_id"`
	Content    string `json:"content"`
	ExternalID string `json:"external_id"` // 链下消息协议生成的外部ID，同一域名内唯一
}

// Append 追加留言：同一域名内外部ID重复直接拒绝，绝不覆盖
// 不同域名可以复用同一个外部ID；没有修改和删除操作
func (s *messageService) Append(ctx context.Context, req AppendMessageReq) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getDomainTx(tx, req.DomainID); err != nil {
			return err
		}

		var dup int64
		if err := tx.Model(&model.DomainMessage{}).
			Where("domain_id = ? AND external_id = ?", req.DomainID, req.ExternalID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateMessage
		}

		message := model.DomainMessage{
			DomainID:   req.DomainID,
			ExternalID: req.ExternalID,
			SenderAddr: req.SenderAddr,
			Content:    req.Content,
		}
		if err := tx.Create(&message).Error; err != nil {
			// 并发写入撞唯一索引同样按重复处理
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMessage
			}
			return err
		}
		return nil
	})
}

// GetMessages 查询域名留言（按追加顺序）
func (s *messageService) GetMessages(ctx context.Context, domainID uint64) ([]model.DomainMessage, error) {
	var messages []model.DomainMessage
	if err := s.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
