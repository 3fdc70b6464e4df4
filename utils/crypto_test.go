package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidAddr(t *testing.T) {
	assert.True(t, IsValidAddr("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"))
	assert.True(t, IsValidAddr("0x000000000000000000000000000000000000dEaD"))
	assert.False(t, IsValidAddr("71C7656EC7ab88b098defB751B7401B5f6d8976"))
	assert.False(t, IsValidAddr("0x123"))
	assert.False(t, IsValidAddr("not-an-address"))
	assert.False(t, IsValidAddr(""))
}

func TestVerifySignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	data := `{"domain_id":1,"price":100}`
	sig, err := crypto.Sign(accounts.TextHash([]byte(data)), key)
	require.NoError(t, err)

	assert.True(t, VerifySignature(addr, data, hexutil.Encode(sig)))

	// 钱包返回的v=27/28同样要能验过
	walletSig := append([]byte{}, sig...)
	walletSig[64] += 27
	assert.True(t, VerifySignature(addr, data, hexutil.Encode(walletSig)))

	// 地址不匹配、内容被篡改、签名格式非法都要拒绝
	assert.False(t, VerifySignature("0x71C7656EC7ab88b098defB751B7401B5f6d8976F", data, hexutil.Encode(sig)))
	assert.False(t, VerifySignature(addr, data+" ", hexutil.Encode(sig)))
	assert.False(t, VerifySignature(addr, data, "0x1234"))
	assert.False(t, VerifySignature(addr, data, "not-hex"))
}
