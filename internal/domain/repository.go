package domain

import (
	"context"
	"reflect"
)

// 仓储约定：查不到返回 (nil, nil)；insert-if-absent 通过唯一约束原子完成，
// 返回 inserted=false 表示已存在。

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindWithEngagement 额外加载评论、反应与买家
	FindWithEngagement(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q ProductQuery, viewer Identity) ([]Product, int64, error)
	ListByStatus(ctx context.Context, status ProductStatus) ([]Product, error)
	// MarkApproved 仅当状态为 pending 时更新，返回是否发生了迁移
	MarkApproved(ctx context.Context, id string) (bool, error)
	// Delete 在事务中删除商品并按策略级联，返回是否删除了商品
	Delete(ctx context.Context, id string, cascade CascadePolicy) (bool, error)
}

type EngagementRepository interface {
	InsertReaction(ctx context.Context, r *ProductReaction) (bool, error)
	DeleteReactions(ctx context.Context, productID, authorID string) (int64, error)
	HasReaction(ctx context.Context, productID, authorID string) (bool, error)

	InsertComment(ctx context.Context, c *Comment) error
	FindComment(ctx context.Context, id string) (*Comment, error)
	DeleteComment(ctx context.Context, id string) (int64, error)
	HasComment(ctx context.Context, productID, authorID string) (bool, error)

	InsertBuyer(ctx context.Context, b *Buyer) (bool, error)
	DeleteBuyer(ctx context.Context, productID, userID string) (int64, error)
	HasBuyer(ctx context.Context, productID, userID string) (bool, error)
}

// UserField 点路径解析结果
type UserField struct {
	Path   string
	Column string
	Type   reflect.Type
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Exists(ctx context.Context, id string) (bool, error)
	FindPublic(ctx context.Context, id string) (*User, error)
	ListPublic(ctx context.Context, offset, limit int) ([]User, int64, error)
	// ResolveField 将 email.status 这类路径映射到列
	ResolveField(path string) (UserField, bool)
	UpdateColumns(ctx context.Context, id string, cols map[string]any) error
	InsertReaction(ctx context.Context, r *UserReaction) (bool, error)
	DeleteReactions(ctx context.Context, targetID, authorID string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
