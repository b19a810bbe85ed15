package story

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// emptyIPMetadataHash 空IP元数据内容对应的固定哈希
const emptyIPMetadataHash = "0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"

// DeriveIPID 在显式注册查询不可用时，确定性地推导IP资产ID：
// 合约地址（去掉0x前缀并转小写）拼接 tokenId 的24位
// 零填充大端十六进制表示。纯函数，相同输入永远得到相同输出。
// tokenId 不允许为负。
func DeriveIPID(contract string, tokenID int64) (string, error) {
	if tokenID < 0 {
		return "", fmt.Errorf("invalid token id: %d", tokenID)
	}
	addr := strings.ToLower(strings.TrimPrefix(contract, "0x"))
	return fmt.Sprintf("0x%s%024x", addr, uint64(tokenID)), nil
}

// keccak256Hex 计算数据的 Keccak-256 摘要并返回0x前缀的十六进制
func keccak256Hex(data []byte) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	return "0x" + hex.EncodeToString(hash.Sum(nil))
}
