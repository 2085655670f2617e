package face

import (
	"fmt"
	"math"
)

// DefaultDimensions は既定の抽出モデルが出力する次元数です。
const DefaultDimensions = 128

// Descriptor は 1 つの顔を表す固定長の埋め込みベクトルです。
type Descriptor []float32

// Candidate は照合対象となる登録済み社員の記述子です。
type Candidate struct {
	EmployeeID string
	Name       string
	Descriptor Descriptor
}

// Validate は記述子が空でなく有限値のみで構成されているかを確認します。
func (d Descriptor) Validate() error {
	if len(d) == 0 {
		return ErrEmptyDescriptor
	}
	for i, v := range d {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("component %d is not finite: %w", i, ErrInvalidDescriptor)
		}
	}
	return nil
}

// Clone は記述子の複製を返します。
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// EuclideanDistance は同じ長さの 2 つの記述子間のユークリッド距離を返します。
func EuclideanDistance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}
