package common

import (
	"crypto/rand"
	"math/big"
	"time"
)

// RandomInt 返回 [0, max) 之间的随机整数（crypto/rand）。
// crypto/rand 读取失败时退回到纳秒时钟取模，保证调用方总能拿到一个合法下标。
func RandomInt(max int) int {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return time.Now().Nanosecond() % max
	}
	return int(n.Int64())
}

// RandomBetween 返回闭区间 [lo, hi] 内的随机整数，lo > hi 时返回 lo。
func RandomBetween(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + RandomInt(hi-lo+1)
}

// RandomBytes fills a fresh slice of n bytes; used for cookie secrets.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
