package outlet

import (
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
)

// Status は店舗の状態を表します。inactive の店舗はジオフェンス判定から除外されます。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// DefaultRadiusMeters は半径未指定時の既定値です。
const DefaultRadiusMeters = 100

// Outlet は打刻を許可する店舗 (拠点) エンティティです。
type Outlet struct {
	ID           string
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Zone は店舗をジオフェンス区域に変換します。
func (o *Outlet) Zone() geo.Zone {
	return geo.Zone{
		ID:           o.ID,
		Name:         o.Name,
		Center:       geo.Coordinate{Latitude: o.Latitude, Longitude: o.Longitude},
		RadiusMeters: o.RadiusMeters,
	}
}
