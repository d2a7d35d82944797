package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gin-gorm-market/internal/domain"
	"gin-gorm-market/pkg/utils"
)

// EngagementRepo 去重依赖唯一索引 + ON CONFLICT DO NOTHING，单条语句完成检查与写入
type EngagementRepo struct{ db *gorm.DB }

var _ domain.EngagementRepository = (*EngagementRepo)(nil)

func NewEngagementRepo(db *gorm.DB) *EngagementRepo { return &EngagementRepo{db: db} }

func insertIfAbsent(ctx context.Context, db *gorm.DB, v any) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func exists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error
	return n > 0, err
}

func (r *EngagementRepo) InsertReaction(ctx context.Context, rc *domain.ProductReaction) (bool, error) {
	if rc.ID == "" {
		rc.ID = utils.NewID()
	}
	return insertIfAbsent(ctx, r.db, rc)
}

func (r *EngagementRepo) DeleteReactions(ctx context.Context, productID, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND author_id = ?", productID, authorID).
		Delete(&domain.ProductReaction{})
	return res.RowsAffected, res.Error
}

func (r *EngagementRepo) HasReaction(ctx context.Context, productID, authorID string) (bool, error) {
	return exists(ctx, r.db, &domain.ProductReaction{}, "product_id = ? AND author_id = ?", productID, authorID)
}

func (r *EngagementRepo) InsertComment(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *EngagementRepo) FindComment(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *EngagementRepo) DeleteComment(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{})
	return res.RowsAffected, res.Error
}

func (r *EngagementRepo) HasComment(ctx context.Context, productID, authorID string) (bool, error) {
	return exists(ctx, r.db, &domain.Comment{}, "product_id = ? AND author_id = ?", productID, authorID)
}

func (r *EngagementRepo) InsertBuyer(ctx context.Context, b *domain.Buyer) (bool, error) {
	if b.ID == "" {
		b.ID = utils.NewID()
	}
	return insertIfAbsent(ctx, r.db, b)
}

func (r *EngagementRepo) DeleteBuyer(ctx context.Context, productID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Delete(&domain.Buyer{})
	return res.RowsAffected, res.Error
}

func (r *EngagementRepo) HasBuyer(ctx context.Context, productID, userID string) (bool, error) {
	return exists(ctx, r.db, &domain.Buyer{}, "product_id = ? AND user_id = ?", productID, userID)
}
