package story

import (
	"fmt"
	"math/big"
	"strings"
)

// weiPerEther 1个代币对应的最小单位数（18位小数）
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseEther 把十进制代币数量解析为最小单位。
// 支持最多18位小数，不允许负数或零。
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidFee)
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFee, amount)
	}

	intPart := amount
	fracPart := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		intPart = amount[:i]
		fracPart = amount[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 18 {
		return nil, fmt.Errorf("%w: more than 18 decimal places: %s", ErrInvalidFee, amount)
	}
	// 小数部分右补零到18位
	fracPart += strings.Repeat("0", 18-len(fracPart))

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount: %s", ErrInvalidFee, amount)
	}
	frac, ok := new(big.Int).SetString(fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount: %s", ErrInvalidFee, amount)
	}

	wei := new(big.Int).Mul(whole, weiPerEther)
	wei.Add(wei, frac)
	if wei.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFee, amount)
	}
	return wei, nil
}
