package outlet

import "context"

// Repository は店舗エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, outlet *Outlet) (*Outlet, error)
	Update(ctx context.Context, outlet *Outlet) (*Outlet, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Outlet, error)
	List(ctx context.Context, filter ListOutletsFilter) ([]*Outlet, string, error)
	// ListActive は有効な店舗を保存順 (作成日時の昇順) で返します。
	ListActive(ctx context.Context) ([]*Outlet, error)
}

// ListOutletsFilter は一覧取得時の検索条件を表します。
type ListOutletsFilter struct {
	Limit  int
	Offset int
	Status *Status
}
