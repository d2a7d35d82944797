package service

import (
	"context"

	"go.uber.org/zap"

	"gin-gorm-market/internal/core/metrics"
	"gin-gorm-market/internal/domain"
)

type ModerationService struct {
	products domain.ProductRepository
	cascade  domain.CascadePolicy
	pageMax  int
	log      *zap.Logger
}

func NewModerationService(products domain.ProductRepository, cascade domain.CascadePolicy, pageMax int, log *zap.Logger) *ModerationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModerationService{products: products, cascade: cascade, pageMax: pageMax, log: log.Named("moderation")}
}

// ProductDetail 商品及其互动数据和反应计数
type ProductDetail struct {
	*domain.Product
	Tally domain.ReactionTally `json:"tally"`
}

func (s *ModerationService) Submit(ctx context.Context, id domain.Identity, draft domain.ProductDraft) (p *domain.Product, err error) {
	defer func() { metrics.Observe(metrics.Moderation, "submit", err) }()

	if !id.Rank.AtLeast(domain.RankSeller) {
		return nil, domain.Forbidden("market.seller_required")
	}
	if err := validate.Struct(draft); err != nil {
		return nil, invalid("market.invalid_product", err)
	}
	photos := draft.Photos
	if photos == nil {
		photos = []string{}
	}
	p = &domain.Product{
		SellerID:    id.UserID,
		MarketID:    draft.MarketID,
		Status:      domain.StatusPending,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		Photos:      photos,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, persist("create product", err)
	}
	s.log.Info("product submitted",
		zap.String("product_id", p.ID), zap.String("seller_id", p.SellerID), zap.Int("market_id", p.MarketID))
	return p, nil
}

// Approve 并发审核同一商品时都返回成功
func (s *ModerationService) Approve(ctx context.Context, id domain.Identity, productID string) (err error) {
	defer func() { metrics.Observe(metrics.Moderation, "approve", err) }()

	if !id.Rank.Elevated() {
		s.log.Warn("approve rejected", zap.String("user_id", id.UserID), zap.Stringer("rank", id.Rank))
		return domain.Forbidden("market.moderator_required")
	}
	changed, err := s.products.MarkApproved(ctx, productID)
	if err != nil {
		return persist("approve product", err)
	}
	if changed {
		s.log.Info("product approved", zap.String("product_id", productID), zap.String("moderator_id", id.UserID))
		return nil
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return persist("load product", err)
	}
	if p == nil {
		return domain.NotFound("market.product_not_found")
	}
	s.log.Debug("product already approved", zap.String("product_id", productID))
	return nil
}

func (s *ModerationService) ListPending(ctx context.Context, id domain.Identity) ([]domain.Product, error) {
	if !id.Rank.Elevated() {
		return nil, domain.Forbidden("market.moderator_required")
	}
	items, err := s.products.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, persist("list pending products", err)
	}
	return items, nil
}

// Get 对不可见商品与不存在的商品返回同样的 NotFound
func (s *ModerationService) Get(ctx context.Context, id domain.Identity, productID string) (*ProductDetail, error) {
	p, err := s.products.FindWithEngagement(ctx, productID)
	if err != nil {
		return nil, persist("load product", err)
	}
	if p == nil || !p.VisibleTo(id) {
		return nil, domain.NotFound("market.product_not_found")
	}
	return &ProductDetail{Product: p, Tally: p.Tally()}, nil
}

func (s *ModerationService) List(ctx context.Context, id domain.Identity, q domain.ProductQuery) ([]domain.Product, int64, error) {
	if !q.Filter.Valid() {
		return nil, 0, domain.Validation("market.invalid_filter")
	}
	if q.MarketID < 0 {
		return nil, 0, domain.Validation("market.invalid_market")
	}
	q.Offset, q.Limit = page(q.Offset, q.Limit, s.pageMax)
	items, total, err := s.products.List(ctx, q, id)
	if err != nil {
		return nil, 0, persist("list products", err)
	}
	return items, total, nil
}

// Delete 商品不存在时视为成功
func (s *ModerationService) Delete(ctx context.Context, id domain.Identity, productID string) (err error) {
	defer func() { metrics.Observe(metrics.Moderation, "delete", err) }()

	if !id.Rank.Elevated() {
		return domain.Forbidden("market.moderator_required")
	}
	deleted, err := s.products.Delete(ctx, productID, s.cascade)
	if err != nil {
		return persist("delete product", err)
	}
	if deleted {
		s.log.Info("product deleted",
			zap.String("product_id", productID), zap.String("moderator_id", id.UserID),
			zap.Bool("cascade_comments", s.cascade.Comments),
			zap.Bool("cascade_reactions", s.cascade.Reactions),
			zap.Bool("cascade_buyers", s.cascade.Buyers))
	}
	return nil
}
