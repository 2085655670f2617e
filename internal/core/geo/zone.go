package geo

// Zone は打刻が許可された円形のジオフェンスです。
type Zone struct {
	ID           string
	Name         string
	Center       Coordinate
	RadiusMeters float64
}

// ZoneHit は判定対象の区域と地点からの距離の組です。
type ZoneHit struct {
	Zone           Zone
	DistanceMeters float64
}

// Resolution は ResolveZone の結果です。
type Resolution struct {
	Matched *ZoneHit
	Nearest *ZoneHit
}

// ResolveZone は与えられた順序で区域を走査し、半径内に入った最初の区域を Matched として返します。
// 近さではなく順序が優先されるため、重なった区域は先に並んだものに解決されます。
// Nearest は半径とは無関係に、走査した中で最も近い区域です。
func ResolveZone(point Coordinate, zones []Zone) Resolution {
	var res Resolution
	for _, z := range zones {
		d := DistanceMeters(point, z.Center)
		if res.Nearest == nil || d < res.Nearest.DistanceMeters {
			res.Nearest = &ZoneHit{Zone: z, DistanceMeters: d}
		}
		if d <= z.RadiusMeters {
			res.Matched = &ZoneHit{Zone: z, DistanceMeters: d}
			break
		}
	}
	return res
}
