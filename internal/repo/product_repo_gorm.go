package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gin-gorm-market/internal/domain"
	"gin-gorm-market/pkg/utils"
)

type ProductRepo struct{ db *gorm.DB }

var _ domain.ProductRepository = (*ProductRepo)(nil)

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) FindWithEngagement(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Reactions").
		Preload("Buyers").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List 非高权限调用方只能看到已审核商品和自己的待审商品
func (r *ProductRepo) List(ctx context.Context, q domain.ProductQuery, viewer domain.Identity) ([]domain.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Product{})
	if q.MarketID > 0 {
		tx = tx.Where("market_id = ?", q.MarketID)
	}
	if !viewer.Rank.Elevated() {
		tx = tx.Where("status = ? OR seller_id = ?", domain.StatusApproved, viewer.UserID)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.Filter {
	case domain.FilterOldest:
		tx = tx.Order("created_at ASC, id ASC")
	case domain.FilterTop:
		tx = tx.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "(SELECT COUNT(*) FROM product_reactions pr WHERE pr.product_id = products.id AND pr.type = ?) DESC, created_at DESC",
			Vars: []any{domain.Upvote},
		}})
	default:
		tx = tx.Order("created_at DESC, id DESC")
	}

	var items []domain.Product
	if err := tx.Offset(q.Offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductRepo) ListByStatus(ctx context.Context, status domain.ProductStatus) ([]domain.Product, error) {
	var items []domain.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *ProductRepo) MarkApproved(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", domain.StatusApproved)
	return res.RowsAffected > 0, res.Error
}

func (r *ProductRepo) Delete(ctx context.Context, id string, cascade domain.CascadePolicy) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		if cascade.Comments {
			if err := tx.Where("product_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
				return err
			}
		}
		if cascade.Reactions {
			if err := tx.Where("product_id = ?", id).Delete(&domain.ProductReaction{}).Error; err != nil {
				return err
			}
		}
		if cascade.Buyers {
			if err := tx.Where("product_id = ?", id).Delete(&domain.Buyer{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return deleted, err
}
