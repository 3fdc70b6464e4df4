package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendMessageDedupPerDomain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id1 := env.mintDomain(t, alice)
	id2 := env.mintDomain(t, bob)

	require.NoError(t, env.message.Append(ctx, AppendMessageReq{
		SenderAddr: bob, DomainID: id1, Content: "这个域名还卖吗", ExternalID: "xmtp-001",
	}))

	// 同一域名重复外部ID：拒绝，绝不覆盖
	err := env.message.Append(ctx, AppendMessageReq{
		SenderAddr: carol, DomainID: id1, Content: "另一条内容", ExternalID: "xmtp-001",
	})
	assert.ErrorIs(t, err, ErrDuplicateMessage)

	// 不同域名可以复用同一个外部ID
	require.NoError(t, env.message.Append(ctx, AppendMessageReq{
		SenderAddr: carol, DomainID: id2, Content: "问一下价格", ExternalID: "xmtp-001",
	}))

	messages, err := env.message.GetMessages(ctx, id1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, bob, messages[0].SenderAddr)
	assert.Equal(t, "这个域名还卖吗", messages[0].Content)
}

func TestAppendMessageUnknownDomain(t *testing.T) {
	env := newTestEnv(t)

	err := env.message.Append(context.Background(), AppendMessageReq{
		SenderAddr: bob, DomainID: 999, Content: "hello", ExternalID: "xmtp-002",
	})
	assert.ErrorIs(t, err, ErrDomainNotFound)
}

func TestMessagesKeepAppendOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.mintDomain(t, alice)

	for _, ext := range []string{"m-1", "m-2", "m-3"} {
		require.NoError(t, env.message.Append(ctx, AppendMessageReq{
			SenderAddr: bob, DomainID: id, Content: ext, ExternalID: ext,
		}))
	}

	messages, err := env.message.GetMessages(ctx, id)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "m-1", messages[0].ExternalID)
	assert.Equal(t, "m-2", messages[1].ExternalID)
	assert.Equal(t, "m-3", messages[2].ExternalID)
}
