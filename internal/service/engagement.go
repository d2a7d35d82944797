package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gin-gorm-market/internal/core/metrics"
	"gin-gorm-market/internal/domain"
)

// EngagementService 评论、反应与购买记录。Verify* 只读且仅作提示，
// 唯一性只由 Add* 的原子插入保证。
type EngagementService struct {
	products domain.ProductRepository
	ledger   domain.EngagementRepository
	log      *zap.Logger
}

func NewEngagementService(products domain.ProductRepository, ledger domain.EngagementRepository, log *zap.Logger) *EngagementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EngagementService{products: products, ledger: ledger, log: log.Named("engagement")}
}

func (s *EngagementService) visible(ctx context.Context, id domain.Identity, productID string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, persist("load product", err)
	}
	if p == nil || !p.VisibleTo(id) {
		return nil, domain.NotFound("market.product_not_found")
	}
	return p, nil
}

func subject(id domain.Identity, userID string) string {
	if userID == "" {
		return id.UserID
	}
	return userID
}

func (s *EngagementService) VerifyReaction(ctx context.Context, id domain.Identity, productID, userID string) (bool, error) {
	if _, err := s.visible(ctx, id, productID); err != nil {
		return false, err
	}
	ok, err := s.ledger.HasReaction(ctx, productID, subject(id, userID))
	if err != nil {
		return false, persist("check reaction", err)
	}
	return ok, nil
}

func (s *EngagementService) VerifyPurchase(ctx context.Context, id domain.Identity, productID, userID string) (bool, error) {
	if _, err := s.visible(ctx, id, productID); err != nil {
		return false, err
	}
	ok, err := s.ledger.HasBuyer(ctx, productID, subject(id, userID))
	if err != nil {
		return false, persist("check buyer", err)
	}
	return ok, nil
}

func (s *EngagementService) VerifyComment(ctx context.Context, id domain.Identity, productID, userID string) (bool, error) {
	if _, err := s.visible(ctx, id, productID); err != nil {
		return false, err
	}
	ok, err := s.ledger.HasComment(ctx, productID, subject(id, userID))
	if err != nil {
		return false, persist("check comment", err)
	}
	return ok, nil
}

// AddComment 同一用户可多次评论
func (s *EngagementService) AddComment(ctx context.Context, id domain.Identity, productID, body string) (c *domain.Comment, err error) {
	defer func() { metrics.Observe(metrics.Engagement, "add_comment", err) }()

	body = strings.TrimSpace(body)
	if err := validate.Var(body, "required,max=2000"); err != nil {
		return nil, domain.Validation("market.invalid_comment")
	}
	if _, err := s.visible(ctx, id, productID); err != nil {
		return nil, err
	}
	c = &domain.Comment{ProductID: productID, AuthorID: id.UserID, Body: body}
	if err := s.ledger.InsertComment(ctx, c); err != nil {
		return nil, persist("insert comment", err)
	}
	return c, nil
}

func (s *EngagementService) RemoveComment(ctx context.Context, id domain.Identity, commentID string) (err error) {
	defer func() { metrics.Observe(metrics.Engagement, "remove_comment", err) }()

	c, err := s.ledger.FindComment(ctx, commentID)
	if err != nil {
		return persist("load comment", err)
	}
	if c == nil {
		return nil
	}
	if !id.CanActOn(c.AuthorID) {
		s.log.Warn("remove comment rejected", zap.String("comment_id", commentID), zap.String("user_id", id.UserID))
		return domain.Forbidden("market.not_comment_author")
	}
	if _, err := s.ledger.DeleteComment(ctx, commentID); err != nil {
		return persist("delete comment", err)
	}
	return nil
}

func (s *EngagementService) AddReaction(ctx context.Context, id domain.Identity, productID string, polarity domain.Polarity) (err error) {
	defer func() { metrics.Observe(metrics.Engagement, "add_reaction", err) }()

	if !polarity.Valid() {
		return domain.Validation("market.invalid_reaction")
	}
	if _, err := s.visible(ctx, id, productID); err != nil {
		return err
	}
	inserted, err := s.ledger.InsertReaction(ctx, &domain.ProductReaction{
		ProductID: productID, AuthorID: id.UserID, Type: polarity,
	})
	if err != nil {
		return persist("insert reaction", err)
	}
	if !inserted {
		s.log.Debug("duplicate reaction", zap.String("product_id", productID), zap.String("user_id", id.UserID))
		return domain.Conflict("market.reaction_exists")
	}
	return nil
}

// RemoveReaction 只能删自己的，版主/管理员除外；不存在视为成功
func (s *EngagementService) RemoveReaction(ctx context.Context, id domain.Identity, productID, authorID string) (err error) {
	defer func() { metrics.Observe(metrics.Engagement, "remove_reaction", err) }()

	authorID = subject(id, authorID)
	if !id.CanActOn(authorID) {
		return domain.Forbidden("market.not_reaction_author")
	}
	if _, err := s.visible(ctx, id, productID); err != nil {
		return err
	}
	if _, err := s.ledger.DeleteReactions(ctx, productID, authorID); err != nil {
		return persist("delete reaction", err)
	}
	return nil
}

// RecordPurchase 由外部购买流程调用
func (s *EngagementService) RecordPurchase(ctx context.Context, id domain.Identity, productID, userID string) (err error) {
	defer func() { metrics.Observe(metrics.Engagement, "record_purchase", err) }()

	if !id.Rank.Elevated() {
		return domain.Forbidden("market.moderator_required")
	}
	if userID == "" {
		return domain.Validation("market.buyer_required")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return persist("load product", err)
	}
	if p == nil {
		return domain.NotFound("market.product_not_found")
	}
	inserted, err := s.ledger.InsertBuyer(ctx, &domain.Buyer{ProductID: productID, UserID: userID})
	if err != nil {
		return persist("insert buyer", err)
	}
	if !inserted {
		return domain.Conflict("market.buyer_exists")
	}
	s.log.Info("purchase recorded", zap.String("product_id", productID), zap.String("buyer_id", userID))
	return nil
}

func (s *EngagementService) RemoveBuyer(ctx context.Context, id domain.Identity, productID, userID string) (err error) {
	defer func() { metrics.Observe(metrics.Engagement, "remove_buyer", err) }()

	if !id.Rank.Elevated() {
		return domain.Forbidden("market.moderator_required")
	}
	if _, err := s.ledger.DeleteBuyer(ctx, productID, userID); err != nil {
		return persist("delete buyer", err)
	}
	return nil
}
