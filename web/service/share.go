package service

import (
	"fmt"
	"strconv"
	"strings"

	"x-lotto/config"
	"x-lotto/lottery"

	"github.com/skip2/go-qrcode"
)

const (
	minQRSize     = 64
	maxQRSize     = 1024
	DefaultQRSize = 256
)

type ShareService struct {
	drawService *DrawService
}

func NewShareService(drawService *DrawService) *ShareService {
	return &ShareService{drawService: drawService}
}

// EntryText 把一条历史记录写成可分享的纯文本。
func EntryText(e lottery.HistoryEntry) string {
	nums := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		nums[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("%s %s (%d): %s",
		config.GetName(),
		e.Timestamp.UTC().Format("2006-01-02 15:04:05Z"),
		len(e.Numbers),
		strings.Join(nums, ", "))
}

// QRCode 返回历史记录的 PNG 二维码，size 会被限制在合理范围内。
func (s *ShareService) QRCode(id string, size int) ([]byte, error) {
	entry, err := s.drawService.Entry(id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	size = min(max(size, minQRSize), maxQRSize)
	return qrcode.Encode(EntryText(entry), qrcode.Medium, size)
}
