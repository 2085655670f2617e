package face

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultThreshold は同一人物とみなす最大距離の既定値です。
	DefaultThreshold = 0.55

	defaultParallelMinCandidates = 512
)

// MatchResult は照合結果です。Matched が false の場合も最小距離は診断用に保持されます。
// 候補が 1 件もなければ Distance は +Inf です。
type MatchResult struct {
	EmployeeID string
	Name       string
	Distance   float64
	Matched    bool
}

// Confidence は 1 - Distance を返します。確率ではなく参考値です。
func (r MatchResult) Confidence() float64 {
	if math.IsInf(r.Distance, 0) || math.IsNaN(r.Distance) {
		return 0
	}
	return 1 - r.Distance
}

// MatcherOption は Matcher の挙動を調整します。
type MatcherOption func(*Matcher)

// WithParallelism は候補数が minCandidates 以上のとき workers 並列で距離計算を行うよう設定します。
func WithParallelism(minCandidates, workers int) MatcherOption {
	return func(m *Matcher) {
		if minCandidates > 0 {
			m.parallelMin = minCandidates
		}
		if workers > 0 {
			m.workers = workers
		}
	}
}

// Matcher は登録済み記述子の中から最近傍を探し、閾値で受理判定を行います。
type Matcher struct {
	threshold   float64
	parallelMin int
	workers     int
}

// NewMatcher は Matcher を生成します。threshold は正の値である必要があります。
func NewMatcher(threshold float64, opts ...MatcherOption) (*Matcher, error) {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, ErrInvalidThreshold
	}
	m := &Matcher{
		threshold:   threshold,
		parallelMin: defaultParallelMinCandidates,
		workers:     runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Threshold は受理閾値を返します。
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

type scored struct {
	index    int
	distance float64
}

var noCandidate = scored{index: -1, distance: math.Inf(1)}

// better は距離が小さい方、同距離なら先に並んだ方を選びます。
// 結合的かつ可換なので、並列実行しても逐次走査と同じ結果になります。
func better(a, b scored) scored {
	if b.index < 0 {
		return a
	}
	if a.index < 0 {
		return b
	}
	if b.distance < a.distance || (b.distance == a.distance && b.index < a.index) {
		return b
	}
	return a
}

// Match は query に最も近い候補を探します。
// 記述子を持たない候補や次元の異なる候補は走査対象から除外されます。
func (m *Matcher) Match(ctx context.Context, query Descriptor, candidates []Candidate) (MatchResult, error) {
	if len(query) == 0 {
		return MatchResult{}, ErrEmptyDescriptor
	}

	var best scored
	var err error
	if m.workers > 1 && len(candidates) >= m.parallelMin {
		best, err = m.scanParallel(ctx, query, candidates)
	} else {
		best, err = scanRange(ctx, query, candidates, 0, len(candidates))
	}
	if err != nil {
		return MatchResult{}, err
	}

	if best.index < 0 {
		return MatchResult{Distance: math.Inf(1)}, nil
	}

	result := MatchResult{Distance: best.distance}
	if best.distance < m.threshold {
		winner := candidates[best.index]
		result.EmployeeID = winner.EmployeeID
		result.Name = winner.Name
		result.Matched = true
	}
	return result, nil
}

func (m *Matcher) scanParallel(ctx context.Context, query Descriptor, candidates []Candidate) (scored, error) {
	workers := m.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	partials := make([]scored, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, len(candidates))
		partials[w] = noCandidate
		if start >= end {
			continue
		}
		g.Go(func() error {
			local, err := scanRange(gctx, query, candidates, start, end)
			if err != nil {
				return err
			}
			partials[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return noCandidate, err
	}

	best := noCandidate
	for _, p := range partials {
		best = better(best, p)
	}
	return best, nil
}

func scanRange(ctx context.Context, query Descriptor, candidates []Candidate, start, end int) (scored, error) {
	best := noCandidate
	for i := start; i < end; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return noCandidate, err
			}
		}
		c := candidates[i]
		if len(c.Descriptor) == 0 {
			continue
		}
		d, err := EuclideanDistance(query, c.Descriptor)
		if err != nil {
			continue
		}
		best = better(best, scored{index: i, distance: d})
	}
	return best, nil
}
