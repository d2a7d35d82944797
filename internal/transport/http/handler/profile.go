package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-gorm-market/internal/domain"
	"gin-gorm-market/internal/service"
	"gin-gorm-market/internal/transport/http/ez"
)

// Profile 用户资料接口；写操作只作用于调用者自己
type Profile struct {
	Profiles *service.ProfileService
}

func (Profile) Priority() int { return 20 }

type usersIn struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

type usersOut struct {
	Total int64               `json:"total"`
	Items []domain.PublicUser `json:"items"`
}

type fieldIn struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value"`
}

type presenceIn struct {
	Online bool `json:"online"`
	Mode   int  `json:"mode"`
}

type photoIn struct {
	Path string `json:"path" binding:"required"`
	Kind string `json:"kind" binding:"required"`
}

type userReactionIn struct {
	User string `json:"user" binding:"required"`
	Type string `json:"type"`
}

type userRef struct {
	ID string `uri:"id" binding:"required"`
}

func (p Profile) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[userRef, *domain.PublicUser]{
		Method: http.MethodGet,
		Path:   "/user/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, _ domain.Identity, in *userRef) (*domain.PublicUser, error) {
			return p.Profiles.GetPublicUser(c.Request.Context(), in.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[usersIn, usersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ domain.Identity, in *usersIn) (usersOut, error) {
			items, total, err := p.Profiles.ListPublicUsers(c.Request.Context(), in.Offset, in.Limit)
			return usersOut{Total: total, Items: items}, err
		},
	})

	ez.RegisterAction(e, ez.Action[fieldIn, struct{}]{
		Method: http.MethodPut,
		Path:   "/user/update",
		Binder: ez.BindJSON,
		Msg:    "user.updated",
		Handler: func(c *gin.Context, id domain.Identity, in *fieldIn) (struct{}, error) {
			return struct{}{}, p.Profiles.UpdateUserField(c.Request.Context(), id, id.UserID, in.Key, in.Value)
		},
	})

	ez.RegisterAction(e, ez.Action[presenceIn, struct{}]{
		Method: http.MethodPut,
		Path:   "/user/online",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, id domain.Identity, in *presenceIn) (struct{}, error) {
			return struct{}{}, p.Profiles.UpdatePresence(c.Request.Context(), id.UserID,
				domain.Presence{Online: in.Online, Mode: in.Mode})
		},
	})

	ez.RegisterAction(e, ez.Action[photoIn, struct{}]{
		Method: http.MethodPut,
		Path:   "/user/photo",
		Binder: ez.BindJSON,
		Msg:    "user.photo_updated",
		Handler: func(c *gin.Context, id domain.Identity, in *photoIn) (struct{}, error) {
			return struct{}{}, p.Profiles.UpdatePhoto(c.Request.Context(), id.UserID, in.Path, domain.PhotoKind(in.Kind))
		},
	})

	ez.RegisterAction(e, ez.Action[userReactionIn, struct{}]{
		Method: http.MethodPut,
		Path:   "/user/reaction",
		Binder: ez.BindJSON,
		Msg:    "user.reaction_added",
		Handler: func(c *gin.Context, id domain.Identity, in *userReactionIn) (struct{}, error) {
			pol, err := domain.ParsePolarity(in.Type)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, p.Profiles.AddUserReaction(c.Request.Context(), in.User, id.UserID, pol)
		},
	})

	ez.RegisterAction(e, ez.Action[userReactionIn, struct{}]{
		Method: http.MethodDelete,
		Path:   "/user/reaction",
		Binder: ez.BindJSON,
		Msg:    "user.reaction_deleted",
		Handler: func(c *gin.Context, id domain.Identity, in *userReactionIn) (struct{}, error) {
			return struct{}{}, p.Profiles.RemoveUserReaction(c.Request.Context(), in.User, id.UserID)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/user",
		Binder: ez.BindNone,
		Msg:    "user.deleted",
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (idOut, error) {
			return idOut{ID: id.UserID}, p.Profiles.DeleteUser(c.Request.Context(), id.UserID)
		},
	})
}

func (p Profile) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[userRef, idOut]{
		Method:  http.MethodDelete,
		Path:    "/users/:id",
		Binder:  ez.BindURI,
		MinRank: domain.RankModerator,
		Msg:     "user.deleted",
		Handler: func(c *gin.Context, _ domain.Identity, in *userRef) (idOut, error) {
			return idOut{ID: in.ID}, p.Profiles.DeleteUser(c.Request.Context(), in.ID)
		},
	})
}
