package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"x-lotto/config"
	"x-lotto/logger"
	"x-lotto/lottery"
	"x-lotto/util/common"

	"go.uber.org/atomic"
)

// ErrDrawPending 表示上一次抽取的动画还没结束。
var ErrDrawPending = errors.New("a draw is already in progress")

const maxNotices = 32

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice 是给界面的提示，Key 对应翻译文件里的 notice.* 表。
type Notice struct {
	Level  NoticeLevel `json:"level"`
	Key    string      `json:"key"`
	Params []string    `json:"params"`
	Time   time.Time   `json:"time"`
}

// Pacing 控制抽取动画的节奏。SettleDelay 为 0 时直接提交。
type Pacing struct {
	PreviewInterval time.Duration
	SettleDelay     time.Duration
	ClearDelay      time.Duration
}

func PacingFromConfig(c config.DrawConfig) Pacing {
	return Pacing{
		PreviewInterval: time.Duration(c.PreviewIntervalMs) * time.Millisecond,
		SettleDelay:     time.Duration(c.SettleDelayMs) * time.Millisecond,
		ClearDelay:      time.Duration(c.ClearDelayMs) * time.Millisecond,
	}
}

func (p Pacing) instant() bool {
	return p.SettleDelay <= 0
}

type DrawStatus struct {
	lottery.State
	Animating bool `json:"animating"`
	// Current 是正在显示的号码，动画中为预览值，提交后为刚抽出的号码，0 表示没有。
	Current int  `json:"current"`
	Busy    bool `json:"busy"`
}

// DrawService 串行化所有对 AppState 的修改，并负责抽取动画与提示。
type DrawService struct {
	ctx   context.Context
	mu    sync.Mutex
	state *lottery.AppState

	pacing    Pacing
	busy      *atomic.Bool
	animating *atomic.Bool
	current   *atomic.Int64

	animMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	noticeMu sync.Mutex
	notices  []Notice
}

func NewDrawService(ctx context.Context, state *lottery.AppState, pacing Pacing) *DrawService {
	if ctx == nil {
		ctx = context.Background()
	}
	return &DrawService{
		ctx:       ctx,
		state:     state,
		pacing:    pacing,
		busy:      atomic.NewBool(false),
		animating: atomic.NewBool(false),
		current:   atomic.NewInt64(0),
	}
}

// StartDraw 开始一次抽取。有动画时立即返回，号码在 SettleDelay 之后提交。
func (s *DrawService) StartDraw() error {
	if !s.busy.CompareAndSwap(false, true) {
		s.notify(NoticeError, "notice.pending")
		return ErrDrawPending
	}
	if s.pacing.instant() {
		defer s.busy.Store(false)
		if s.checkComplete() {
			return lottery.ErrDrawComplete
		}
		_, err := s.commit(nil)
		return err
	}

	// 持有 animMu 直到动画登记完毕，这样并发的 Reset 一定能取消它
	s.animMu.Lock()
	defer s.animMu.Unlock()
	if s.checkComplete() {
		s.busy.Store(false)
		return lottery.ErrDrawComplete
	}
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.animating.Store(true)
	s.current.Store(0)
	s.showPreview()
	go s.animate(ctx, cancel, done)
	return nil
}

// DrawNow 跳过动画直接抽取一个号码。
func (s *DrawService) DrawNow() (int, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.notify(NoticeError, "notice.pending")
		return 0, ErrDrawPending
	}
	defer s.busy.Store(false)
	if s.checkComplete() {
		return 0, lottery.ErrDrawComplete
	}
	return s.commit(nil)
}

func (s *DrawService) checkComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsComplete() {
		return false
	}
	s.notify(NoticeInfo, "notice.complete", "Universe=="+strconv.Itoa(s.state.UniverseSize()))
	return true
}

func (s *DrawService) animate(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()
	defer s.busy.Store(false)
	defer s.animating.Store(false)
	defer common.Recover("draw animation")

	interval := s.pacing.PreviewInterval
	if interval <= 0 {
		interval = s.pacing.SettleDelay
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	settle := time.NewTimer(s.pacing.SettleDelay)
	defer settle.Stop()

	s.showPreview()
	for settled := false; !settled; {
		select {
		case <-ctx.Done():
			s.current.Store(0)
			return
		case <-ticker.C:
			s.showPreview()
		case <-settle.C:
			settled = true
		}
	}

	if _, err := s.commit(ctx); err != nil {
		s.current.Store(0)
		return
	}
	if s.pacing.ClearDelay <= 0 {
		s.current.Store(0)
		return
	}
	hold := time.NewTimer(s.pacing.ClearDelay)
	defer hold.Stop()
	select {
	case <-ctx.Done():
	case <-hold.C:
	}
	s.current.Store(0)
}

func (s *DrawService) showPreview() {
	s.mu.Lock()
	n, ok := s.state.Preview()
	s.mu.Unlock()
	if ok {
		s.current.Store(int64(n))
	}
}

// commit 提交一个号码。ctx 不为 nil 表示由动画提交：已取消的动画不会提交任何号码，
// 提交的号码会显示到 ClearDelay 结束；直接抽取不显示号码。
func (s *DrawService) commit(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx != nil && ctx.Err() != nil {
		return 0, ctx.Err()
	}

	n, err := s.state.Draw()
	if n == 0 {
		if errors.Is(err, lottery.ErrDrawComplete) {
			s.notify(NoticeInfo, "notice.complete", "Universe=="+strconv.Itoa(s.state.UniverseSize()))
		}
		return 0, err
	}
	if err != nil {
		// 号码已在内存中提交，只是没能写入存储
		logger.Warning("persist drawn number failed:", err)
	}
	if ctx != nil {
		s.current.Store(int64(n))
	} else {
		s.current.Store(0)
	}
	logger.Infof("drawn %d, %d remaining", n, s.state.Remaining())
	s.notify(NoticeInfo, "notice.drawn",
		"Number=="+strconv.Itoa(n),
		"Remaining=="+strconv.Itoa(s.state.Remaining()))
	return n, nil
}

// stopAnimation 取消正在进行的动画并等待它退出。调用时不能持有 mu。
func (s *DrawService) stopAnimation() {
	s.animMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.animMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Reset 结束当前一轮：非空的一轮会存入历史，然后清空。
func (s *DrawService) Reset() (lottery.HistoryEntry, bool, error) {
	s.stopAnimation()
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, archived, err := s.state.Reset()
	if err != nil {
		logger.Warning("reset draw failed:", err)
	}
	if archived {
		logger.Infof("archived draw %s with %d numbers", entry.ID, len(entry.Numbers))
		s.notify(NoticeInfo, "notice.archived", "Count=="+strconv.Itoa(len(entry.Numbers)))
	}
	return entry, archived, err
}

// Discard 清空当前一轮，不写入历史。
func (s *DrawService) Discard() error {
	s.stopAnimation()
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.state.Discard()
	if err != nil {
		logger.Warning("discard draw failed:", err)
	}
	return err
}

// Configure 修改号码范围。无效的值会产生提示，原配置保持不变。
// 存储写入失败只记录日志，内存中的新配置照常生效。
func (s *DrawService) Configure(n int) error {
	s.mu.Lock()
	if err := s.validate(n); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.stopAnimation()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.state.Configure(n)
	if lottery.IsValidation(err) {
		s.notifyInvalid()
		return err
	}
	if err != nil {
		// 新范围已经生效，只是没能写入存储
		logger.Warning("persist universe size failed:", err)
	}
	logger.Infof("universe size set to %d", n)
	s.notify(NoticeInfo, "notice.configured", "Universe=="+strconv.Itoa(n))
	return nil
}

func (s *DrawService) validate(n int) error {
	if n < 1 || n > s.state.MaxUniverse() {
		s.notifyInvalid()
		return &lottery.ValidationError{Field: "universeSize", Value: n, Min: 1, Max: s.state.MaxUniverse()}
	}
	return nil
}

func (s *DrawService) notifyInvalid() {
	s.notify(NoticeError, "notice.invalid",
		"Min==1",
		"Max=="+strconv.Itoa(s.state.MaxUniverse()),
		"Current=="+strconv.Itoa(s.state.UniverseSize()))
}

// ClearAll 删除所有数据并恢复默认范围。
func (s *DrawService) ClearAll() error {
	s.stopAnimation()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.ClearAll(); err != nil {
		logger.Error("clear all data failed:", err)
		return err
	}
	logger.Notice("all draw data cleared")
	s.notify(NoticeInfo, "notice.cleared")
	return nil
}

func (s *DrawService) Status() DrawStatus {
	s.mu.Lock()
	st := s.state.Snapshot()
	s.mu.Unlock()
	return DrawStatus{
		State:     st,
		Animating: s.animating.Load(),
		Current:   int(s.current.Load()),
		Busy:      s.busy.Load(),
	}
}

func (s *DrawService) Entry(id string) (lottery.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Entry(id)
}

func (s *DrawService) History() []lottery.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot().History
}

func (s *DrawService) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Save()
}

// Stop 取消动画并保存状态，进程退出前调用。
func (s *DrawService) Stop() error {
	s.stopAnimation()
	return s.Save()
}

func (s *DrawService) notify(level NoticeLevel, key string, params ...string) {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	if len(s.notices) >= maxNotices {
		s.notices = s.notices[1:]
	}
	s.notices = append(s.notices, Notice{
		Level:  level,
		Key:    key,
		Params: params,
		Time:   time.Now(),
	})
}

// Notices 取出并清空待显示的提示。
func (s *DrawService) Notices() []Notice {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}
