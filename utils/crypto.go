package utils

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// IsValidAddr 校验是否为合法的十六进制钱包地址
func IsValidAddr(addr string) bool {
	return common.IsHexAddress(addr)
}

// VerifySignature 验证钱包签名（personal_sign格式）
// params: userAddr-用户地址, data-待签数据, signature-0x开头的65字节签名
func VerifySignature(userAddr, data, signature string) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != 65 {
		return false
	}

	// MetaMask等钱包返回v=27/28，恢复公钥需要0/1
	if sig[64] >= 27 {
		sig = append([]byte{}, sig...)
		sig[64] -= 27
	}

	hash := accounts.TextHash([]byte(data))
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false
	}

	return crypto.PubkeyToAddress(*pubKey) == common.HexToAddress(userAddr)
}
