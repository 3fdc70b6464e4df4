package payment

import (
	"context"
	"errors"
	"sync"
)

// 支付轨道错误（外部协作方返回的两类拒绝）
var (
	ErrInsufficientFunds = errors.New("付款方余额不足")
	ErrUnauthorized      = errors.New("支付轨道拒绝该操作")
)

// Rail 支付轨道接口（外部协作方：同步借记付款方、贷记收款方）
// 必须在同一个账本事务内调用，失败时整个操作回滚，不允许出现半程效果
type Rail interface {
	DebitAndCredit(ctx context.Context, payer, payee string, amount int64) error
}

// MemoryRail 内存支付轨道（本地开发与测试用）
type MemoryRail struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryRail 创建内存支付轨道
func NewMemoryRail() *MemoryRail {
	return &MemoryRail{
		balances: make(map[string]int64),
	}
}

// SetBalance 设置账户余额（测试/开发入金）
func (r *MemoryRail) SetBalance(addr string, amount int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[addr] = amount
}

// Balance 查询账户余额
func (r *MemoryRail) Balance(addr string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[addr]
}

// DebitAndCredit 借记payer、贷记payee，金额不足返回ErrInsufficientFunds
// 金额为0视为无事发生（碎片定价截断可产生0价购买）
func (r *MemoryRail) DebitAndCredit(ctx context.Context, payer, payee string, amount int64) error {
	if amount < 0 {
		return ErrUnauthorized
	}
	if amount == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.balances[payer] < amount {
		return ErrInsufficientFunds
	}
	r.balances[payer] -= amount
	r.balances[payee] += amount
	return nil
}
