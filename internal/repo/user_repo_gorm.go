package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"gin-gorm-market/internal/domain"
	"gin-gorm-market/pkg/utils"
)

var publicUserColumns = []string{
	"id", "name", "username", "specialty", "offer", "photo", "cover",
	"online_online", "online_mode", "online_last",
	"stats_sales", "stats_purchases", "stats_reputation", "stats_hidden",
	"created_at",
}

type UserRepo struct {
	db     *gorm.DB
	fields map[string]domain.UserField
}

var _ domain.UserRepository = (*UserRepo)(nil)

// NewUserRepo 启动时解析 User 的 gorm schema，建立 json 点路径到列的索引
func NewUserRepo(db *gorm.DB) (*UserRepo, error) {
	fields, err := indexUserFields(db.NamingStrategy)
	if err != nil {
		return nil, err
	}
	return &UserRepo{db: db, fields: fields}, nil
}

func indexUserFields(namer schema.Namer) (map[string]domain.UserField, error) {
	s, err := schema.Parse(&domain.User{}, &sync.Map{}, namer)
	if err != nil {
		return nil, fmt.Errorf("parse user schema: %w", err)
	}
	root := reflect.TypeOf(domain.User{})
	out := make(map[string]domain.UserField, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" || f.PrimaryKey {
			continue
		}
		path, ok := jsonPath(root, f.BindNames)
		if !ok {
			continue
		}
		out[path] = domain.UserField{Path: path, Column: f.DBName, Type: f.FieldType}
	}
	return out, nil
}

// jsonPath 按 json tag 拼出 a.b.c；json:"-" 的字段不可寻址
func jsonPath(t reflect.Type, names []string) (string, bool) {
	segs := make([]string, 0, len(names))
	cur := t
	for _, n := range names {
		sf, ok := cur.FieldByName(n)
		if !ok {
			return "", false
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return "", false
		}
		if name == "" {
			name = n
		}
		segs = append(segs, name)
		cur = sf.Type
		if cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
	}
	return strings.Join(segs, "."), len(segs) > 0
}

func (r *UserRepo) ResolveField(path string) (domain.UserField, bool) {
	f, ok := r.fields[path]
	return f, ok
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, &domain.User{}, "id = ?", id)
}

func (r *UserRepo) FindPublic(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Select(publicUserColumns).
		Preload("Reactions").
		First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ListPublic(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.User
	err := r.db.WithContext(ctx).
		Select(publicUserColumns).
		Preload("Reactions").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateColumns 只写给定列，不触发钩子也不改 updated_at
func (r *UserRepo) UpdateColumns(ctx context.Context, id string, cols map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumns(cols).Error
}

func (r *UserRepo) InsertReaction(ctx context.Context, rc *domain.UserReaction) (bool, error) {
	if rc.ID == "" {
		rc.ID = utils.NewID()
	}
	return insertIfAbsent(ctx, r.db, rc)
}

func (r *UserRepo) DeleteReactions(ctx context.Context, targetID, authorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("target_id = ? AND author_id = ?", targetID, authorID).
		Delete(&domain.UserReaction{})
	return res.RowsAffected, res.Error
}

// Delete 同时清掉用户收到的反应；其它集合里的引用由调用方处理
func (r *UserRepo) Delete(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return tx.Where("target_id = ?", id).Delete(&domain.UserReaction{}).Error
	})
	return n, err
}
