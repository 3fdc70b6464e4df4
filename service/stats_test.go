package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveListingsFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id1 := env.mintDomain(t, alice)
	id2 := env.mintDomain(t, bob)
	env.mintDomain(t, carol) // 不挂牌的域名不应出现在视图里

	require.NoError(t, env.listing.List(ctx, ListReq{ActorAddr: alice, DomainID: id1, Price: 100, DurationSec: 10}))
	require.NoError(t, env.listing.List(ctx, ListReq{ActorAddr: bob, DomainID: id2, Price: 200, DurationSec: 600}))

	// id1 的挂牌过期后，视图只剩 id2
	env.clock.Advance(11 * time.Second)

	listings, err := env.stats.ActiveListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, id2, listings[0].DomainID)
}

func TestOpenPoolsFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id1 := env.mintDomain(t, alice)
	id2 := env.mintDomain(t, bob)
	id3 := env.mintDomain(t, carol)

	// id1：会过期；id2：会成交；id3：保持开放
	require.NoError(t, env.pool.Create(ctx, CreatePoolReq{InitiatorAddr: alice, DomainID: id1, TotalPrice: 100, MinParticipants: 2, DurationSec: 10}))
	require.NoError(t, env.pool.Create(ctx, CreatePoolReq{InitiatorAddr: bob, DomainID: id2, TotalPrice: 200, MinParticipants: 2, DurationSec: 600}))
	require.NoError(t, env.pool.Create(ctx, CreatePoolReq{InitiatorAddr: carol, DomainID: id3, TotalPrice: 300, MinParticipants: 2, DurationSec: 600}))

	env.rail.SetBalance(dave, 100)
	env.rail.SetBalance(eve, 100)
	_, err := env.pool.Join(ctx, JoinPoolReq{ParticipantAddr: dave, DomainID: id2, Amount: 100})
	require.NoError(t, err)
	fulfilled, err := env.pool.Join(ctx, JoinPoolReq{ParticipantAddr: eve, DomainID: id2, Amount: 100})
	require.NoError(t, err)
	require.True(t, fulfilled)

	env.clock.Advance(11 * time.Second)

	pools, err := env.stats.OpenPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, id3, pools[0].DomainID)
}

func TestTradeCountPerSettlementPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 路径一：挂牌购买
	id := env.mintDomain(t, alice)
	require.NoError(t, env.listing.List(ctx, ListReq{ActorAddr: alice, DomainID: id, Price: 100, DurationSec: 600}))
	env.rail.SetBalance(bob, 100)
	_, err := env.listing.Buy(ctx, BuyListingReq{BuyerAddr: bob, DomainID: id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.tradeCount(t, id))

	// 路径二：接受报价
	pos, err := env.offer.Make(ctx, MakeOfferReq{BuyerAddr: carol, DomainID: id, Price: 150, DurationSec: 600})
	require.NoError(t, err)
	env.rail.SetBalance(carol, 150)
	_, err = env.offer.Accept(ctx, AcceptOfferReq{OwnerAddr: bob, DomainID: id, Position: pos})
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.tradeCount(t, id))

	// 路径三：拼单成交
	require.NoError(t, env.pool.Create(ctx, CreatePoolReq{InitiatorAddr: carol, DomainID: id, TotalPrice: 200, MinParticipants: 2, DurationSec: 600}))
	env.rail.SetBalance(dave, 100)
	env.rail.SetBalance(eve, 100)
	_, err = env.pool.Join(ctx, JoinPoolReq{ParticipantAddr: dave, DomainID: id, Amount: 100})
	require.NoError(t, err)
	_, err = env.pool.Join(ctx, JoinPoolReq{ParticipantAddr: eve, DomainID: id, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(3), env.tradeCount(t, id))

	// 被拒绝的调用不产生计数
	_, err = env.listing.Buy(ctx, BuyListingReq{BuyerAddr: dave, DomainID: id})
	assert.Error(t, err)
	assert.Equal(t, int64(3), env.tradeCount(t, id))
}
