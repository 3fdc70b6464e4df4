package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeOfferValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	_, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: 999, Price: 100, DurationSec: 60})
	assert.ErrorIs(t, err, ErrDomainNotFound)

	_, err = env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 0, DurationSec: 60})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 100, DurationSec: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestOfferPositionsAreStable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	// 三个报价，下标0/1/2
	p0, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 100, DurationSec: 600})
	require.NoError(t, err)
	p1, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: carol, DomainID: id, Price: 110, DurationSec: 600})
	require.NoError(t, err)
	p2, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: dave, DomainID: id, Price: 120, DurationSec: 600})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{p0, p1, p2})

	// 撤销第二个，接受第一个：第三个不受任何影响
	require.NoError(t, env.offer.Cancel(ctx, CancelOfferReq{BuyerAddr: carol, DomainID: id, Position: p1}))

	env.rail.SetBalance(bob, 100)
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: alice, DomainID: id, Position: p0})
	require.NoError(t, err)
	assert.Equal(t, bob, env.ownerOf(t, id))

	offers, err := env.offer.GetOffers(ctx, id)
	require.NoError(t, err)
	require.Len(t, offers, 3)
	assert.False(t, offers[0].Active)
	assert.False(t, offers[1].Active)
	assert.True(t, offers[2].Active)

	// 第三个报价仍可被新持有者独立接受
	env.rail.SetBalance(dave, 120)
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: bob, DomainID: id, Position: p2})
	require.NoError(t, err)
	assert.Equal(t, dave, env.ownerOf(t, id))
	assert.Equal(t, int64(2), env.tradeCount(t, id))
}

func TestAcceptChecksEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	pos, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 100, DurationSec: 10})
	require.NoError(t, err)
	env.rail.SetBalance(bob, 100)

	// 下标越界
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: alice, DomainID: id, Position: 5})
	assert.ErrorIs(t, err, ErrOfferNotFound)

	// 非持有者接受
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: carol, DomainID: id, Position: pos})
	assert.ErrorIs(t, err, ErrNotOwner)

	// 过期报价即使Active标记未翻转也不可接受
	env.clock.Advance(11 * time.Second)
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: alice, DomainID: id, Position: pos})
	assert.ErrorIs(t, err, ErrOfferExpired)
	assert.Equal(t, alice, env.ownerOf(t, id))
	assert.Equal(t, int64(0), env.tradeCount(t, id))
}

func TestLazyExpirySweepOnMake(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	_, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 100, DurationSec: 10})
	require.NoError(t, err)

	env.clock.Advance(11 * time.Second)

	// 下一次提交报价时，过期报价被惰性翻为失效；条目不删除，下标稳定
	p1, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: carol, DomainID: id, Price: 110, DurationSec: 60})
	require.NoError(t, err)
	assert.Equal(t, 1, p1)

	offers, err := env.offer.GetOffers(ctx, id)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.False(t, offers[0].Active)
	assert.True(t, offers[1].Active)
}

func TestAcceptRevalidatesOwnershipAtAcceptTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	pos, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 100, DurationSec: 600})
	require.NoError(t, err)
	env.rail.SetBalance(bob, 100)

	// 报价挂出后域名转手：旧持有者无权接受，新持有者可以
	require.NoError(t, env.registry.Transfer(ctx, TransferReq{ActorAddr: alice, ToAddr: carol, DomainID: id}))

	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: alice, DomainID: id, Position: pos})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: carol, DomainID: id, Position: pos})
	require.NoError(t, err)

	// 买家成为新持有者，货款给的是接受时的持有者carol
	assert.Equal(t, bob, env.ownerOf(t, id))
	assert.Equal(t, int64(100), env.rail.Balance(carol))
	assert.Equal(t, int64(0), env.rail.Balance(alice))
}

func TestCancelOffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	pos, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: bob, DomainID: id, Price: 100, DurationSec: 600})
	require.NoError(t, err)

	// 只有报价发起人能撤销
	err = env.offer.Cancel(ctx, CancelOfferReq{BuyerAddr: carol, DomainID: id, Position: pos})
	assert.ErrorIs(t, err, ErrNotOfferBuyer)

	require.NoError(t, env.offer.Cancel(ctx, CancelOfferReq{BuyerAddr: bob, DomainID: id, Position: pos}))

	// 已撤销的报价不可接受、不可再撤销
	env.rail.SetBalance(bob, 100)
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: alice, DomainID: id, Position: pos})
	assert.ErrorIs(t, err, ErrOfferInactive)

	err = env.offer.Cancel(ctx, CancelOfferReq{BuyerAddr: bob, DomainID: id, Position: pos})
	assert.ErrorIs(t, err, ErrOfferInactive)
}
