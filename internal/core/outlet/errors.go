package outlet

import "errors"

var (
	// ErrOutletNotFound は店舗が存在しない場合に返却されます。
	ErrOutletNotFound = errors.New("outlet: not found")
	// ErrInvalidName は店舗名が不正な場合に返却されます。
	ErrInvalidName = errors.New("outlet: invalid name")
	// ErrInvalidCoordinate は緯度経度が範囲外の場合に返却されます。
	ErrInvalidCoordinate = errors.New("outlet: invalid coordinate")
	// ErrInvalidRadius は半径が負の値の場合に返却されます。
	ErrInvalidRadius = errors.New("outlet: invalid radius")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("outlet: invalid status")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("outlet: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("outlet: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("outlet: invalid page token")
)
