package roster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"golang.org/x/sync/singleflight"
)

// Source は登録済み社員の事前計算済み記述子を永続層から取得します。
// 記述子を持たない社員は含めず、順序は保存順です。
type Source interface {
	CachedDescriptors(ctx context.Context) ([]face.Candidate, error)
}

// Provider は照合に用いる候補のスナップショットを提供します。
type Provider interface {
	Candidates(ctx context.Context) ([]face.Candidate, error)
}

// Invalidator は記述子の変更を通知されるキャッシュです。
type Invalidator interface {
	Invalidate()
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const (
	DefaultTTL = 30 * time.Second
	// DefaultLoadTimeout は共有ロード 1 回あたりの上限です。
	DefaultLoadTimeout = 10 * time.Second
)

// CacheOption は Cache の任意設定です。
type CacheOption func(*Cache)

// WithLoadTimeout は共有ロードの上限時間を設定します。0 以下は無視します。
func WithLoadTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// Cache は Source の結果を TTL の間保持する読み取り共有のスナップショットです。
// 同時に期限切れを検知した複数のスキャンは 1 回のロードを共有します。
type Cache struct {
	source      Source
	ttl         time.Duration
	loadTimeout time.Duration
	clock       Clock

	group singleflight.Group

	mu         sync.RWMutex
	snapshot   []face.Candidate
	loadedAt   time.Time
	generation uint64
}

// NewCache は Cache を生成します。ttl が 0 以下の場合は DefaultTTL を用います。
func NewCache(source Source, ttl time.Duration, clock Clock, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = realClock{}
	}
	c := &Cache{source: source, ttl: ttl, loadTimeout: DefaultLoadTimeout, clock: clock}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Candidates は有効なスナップショットを返し、期限切れであれば再ロードします。
// ロードは呼び出し元のキャンセルから切り離して実行され、待機中の他の呼び出しには影響しません。
// 返却されるスライスは共有されるため、呼び出し側で変更してはいけません。
func (c *Cache) Candidates(ctx context.Context) ([]face.Candidate, error) {
	c.mu.RLock()
	snapshot, loadedAt, gen := c.snapshot, c.loadedAt, c.generation
	c.mu.RUnlock()

	if !loadedAt.IsZero() && c.clock.Now().Sub(loadedAt) < c.ttl {
		return snapshot, nil
	}

	ch := c.group.DoChan(fmt.Sprintf("load-%d", gen), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		loaded, err := c.source.CachedDescriptors(loadCtx)
		if err != nil {
			return nil, fmt.Errorf("roster: load descriptors: %w", err)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// ロード中に Invalidate された場合は結果を保存しない
		if c.generation == gen {
			c.snapshot = loaded
			c.loadedAt = c.clock.Now()
		}
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]face.Candidate), nil
	}
}

// Invalidate は次回の Candidates 呼び出しで再ロードさせます。
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.loadedAt = time.Time{}
	c.generation++
}

// Direct はキャッシュせず毎回 Source から読み込む Provider です。
type Direct struct {
	Source Source
}

// Candidates は Source をそのまま呼び出します。
func (d Direct) Candidates(ctx context.Context) ([]face.Candidate, error) {
	return d.Source.CachedDescriptors(ctx)
}
