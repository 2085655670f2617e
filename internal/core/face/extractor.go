package face

import "context"

// Extractor は画像から顔記述子を算出する外部モデルの抽象です。
// 顔が見つからない場合は ErrNoFace を返します。
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Descriptor, error)
}

// Warmer は初回呼び出しが重いモデルを起動時に一度だけ準備させるための任意インターフェースです。
type Warmer interface {
	Warmup(ctx context.Context) error
}
