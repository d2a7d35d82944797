package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-gorm-market/internal/domain"
	"gin-gorm-market/internal/service"
	"gin-gorm-market/internal/transport/http/ez"
)

// Market 商品、审核与互动接口；用户端挂 /api/v1，审核端挂 /admin/v1
type Market struct {
	Moderation *service.ModerationService
	Engagement *service.EngagementService
}

func (Market) Priority() int { return 10 }

type productRef struct {
	Product string `json:"product" binding:"required"`
}

type productUser struct {
	Product string `json:"product" binding:"required"`
	User    string `json:"user"`
}

type listIn struct {
	Filter int `uri:"filter"`
	Market int `uri:"market"`
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

type listOut struct {
	Total int64            `json:"total"`
	Items []domain.Product `json:"items"`
}

type commentIn struct {
	Product string `json:"product" binding:"required"`
	Body    string `json:"body"`
}

type reactionIn struct {
	Product string `json:"product" binding:"required"`
	Type    string `json:"type" binding:"required"`
}

type reactionRemoveIn struct {
	Product string `json:"product" binding:"required"`
	Author  string `json:"author"`
}

type commentRef struct {
	Comment string `json:"comment" binding:"required"`
}

type verifyOut struct {
	Exists bool `json:"exists"`
}

type idOut struct {
	ID string `json:"id"`
}

func (m Market) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[domain.ProductDraft, *domain.Product]{
		Method:  http.MethodPut,
		Path:    "/market/add/product",
		Binder:  ez.BindJSON,
		MinRank: domain.RankSeller,
		Msg:     "market.product_added",
		Handler: func(c *gin.Context, id domain.Identity, in *domain.ProductDraft) (*domain.Product, error) {
			return m.Moderation.Submit(c.Request.Context(), id, *in)
		},
	})

	type getIn struct {
		ID string `uri:"id" binding:"required"`
	}
	ez.RegisterAction(e, ez.Action[getIn, *service.ProductDetail]{
		Method: http.MethodGet,
		Path:   "/market/get/product/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, id domain.Identity, in *getIn) (*service.ProductDetail, error) {
			return m.Moderation.Get(c.Request.Context(), id, in.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[listIn, listOut]{
		Method: http.MethodGet,
		Path:   "/market/get/products/:filter/:market",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, id domain.Identity, in *listIn) (listOut, error) {
			items, total, err := m.Moderation.List(c.Request.Context(), id, domain.ProductQuery{
				Filter:   domain.ListFilter(in.Filter),
				MarketID: in.Market,
				Offset:   in.Offset,
				Limit:    in.Limit,
			})
			if err != nil {
				return listOut{}, err
			}
			if items == nil {
				items = []domain.Product{}
			}
			return listOut{Total: total, Items: items}, nil
		},
	})

	verify := map[string]func(*gin.Context, domain.Identity, string, string) (bool, error){
		"/market/verify/reaction": func(c *gin.Context, id domain.Identity, p, u string) (bool, error) {
			return m.Engagement.VerifyReaction(c.Request.Context(), id, p, u)
		},
		"/market/verify/purchase": func(c *gin.Context, id domain.Identity, p, u string) (bool, error) {
			return m.Engagement.VerifyPurchase(c.Request.Context(), id, p, u)
		},
		"/market/verify/comment": func(c *gin.Context, id domain.Identity, p, u string) (bool, error) {
			return m.Engagement.VerifyComment(c.Request.Context(), id, p, u)
		},
	}
	for path, check := range verify {
		check := check
		ez.RegisterAction(e, ez.Action[productUser, verifyOut]{
			Method: http.MethodPost,
			Path:   path,
			Binder: ez.BindJSON,
			Handler: func(c *gin.Context, id domain.Identity, in *productUser) (verifyOut, error) {
				ok, err := check(c, id, in.Product, in.User)
				return verifyOut{Exists: ok}, err
			},
		})
	}

	ez.RegisterAction(e, ez.Action[commentIn, *domain.Comment]{
		Method: http.MethodPut,
		Path:   "/market/add/comment",
		Binder: ez.BindJSON,
		Msg:    "market.comment_added",
		Handler: func(c *gin.Context, id domain.Identity, in *commentIn) (*domain.Comment, error) {
			return m.Engagement.AddComment(c.Request.Context(), id, in.Product, in.Body)
		},
	})

	ez.RegisterAction(e, ez.Action[reactionIn, struct{}]{
		Method: http.MethodPut,
		Path:   "/market/add/reaction",
		Binder: ez.BindJSON,
		Msg:    "market.reaction_added",
		Handler: func(c *gin.Context, id domain.Identity, in *reactionIn) (struct{}, error) {
			pol, err := domain.ParsePolarity(in.Type)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.Engagement.AddReaction(c.Request.Context(), id, in.Product, pol)
		},
	})

	ez.RegisterAction(e, ez.Action[commentRef, idOut]{
		Method: http.MethodDelete,
		Path:   "/market/delete/comment",
		Binder: ez.BindJSON,
		Msg:    "market.comment_deleted",
		Handler: func(c *gin.Context, id domain.Identity, in *commentRef) (idOut, error) {
			return idOut{ID: in.Comment}, m.Engagement.RemoveComment(c.Request.Context(), id, in.Comment)
		},
	})

	ez.RegisterAction(e, ez.Action[reactionRemoveIn, struct{}]{
		Method: http.MethodDelete,
		Path:   "/market/delete/reaction",
		Binder: ez.BindJSON,
		Msg:    "market.reaction_deleted",
		Handler: func(c *gin.Context, id domain.Identity, in *reactionRemoveIn) (struct{}, error) {
			return struct{}{}, m.Engagement.RemoveReaction(c.Request.Context(), id, in.Product, in.Author)
		},
	})
}

func (m Market) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[productRef, idOut]{
		Method:  http.MethodPost,
		Path:    "/market/approve/product",
		Binder:  ez.BindJSON,
		MinRank: domain.RankModerator,
		Msg:     "market.product_approved",
		Handler: func(c *gin.Context, id domain.Identity, in *productRef) (idOut, error) {
			return idOut{ID: in.Product}, m.Moderation.Approve(c.Request.Context(), id, in.Product)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Product]{
		Method:  http.MethodGet,
		Path:    "/market/approve/pending",
		Binder:  ez.BindNone,
		MinRank: domain.RankModerator,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) ([]domain.Product, error) {
			items, err := m.Moderation.ListPending(c.Request.Context(), id)
			if items == nil && err == nil {
				items = []domain.Product{}
			}
			return items, err
		},
	})

	ez.RegisterAction(e, ez.Action[productRef, idOut]{
		Method:  http.MethodDelete,
		Path:    "/market/delete/product",
		Binder:  ez.BindJSON,
		MinRank: domain.RankModerator,
		Msg:     "market.product_deleted",
		Handler: func(c *gin.Context, id domain.Identity, in *productRef) (idOut, error) {
			return idOut{ID: in.Product}, m.Moderation.Delete(c.Request.Context(), id, in.Product)
		},
	})

	ez.RegisterAction(e, ez.Action[productUser, struct{}]{
		Method:  http.MethodPut,
		Path:    "/market/add/buyer",
		Binder:  ez.BindJSON,
		MinRank: domain.RankModerator,
		Msg:     "market.buyer_added",
		Handler: func(c *gin.Context, id domain.Identity, in *productUser) (struct{}, error) {
			return struct{}{}, m.Engagement.RecordPurchase(c.Request.Context(), id, in.Product, in.User)
		},
	})

	ez.RegisterAction(e, ez.Action[productUser, struct{}]{
		Method:  http.MethodDelete,
		Path:    "/market/delete/buyer",
		Binder:  ez.BindJSON,
		MinRank: domain.RankModerator,
		Msg:     "market.buyer_deleted",
		Handler: func(c *gin.Context, id domain.Identity, in *productUser) (struct{}, error) {
			if in.User == "" {
				return struct{}{}, ez.BadRequest("market.buyer_required")
			}
			return struct{}{}, m.Engagement.RemoveBuyer(c.Request.Context(), id, in.Product, in.User)
		},
	})
}
