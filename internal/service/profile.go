package service

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"gin-gorm-market/internal/core/metrics"
	"gin-gorm-market/internal/domain"
)

var timeType = reflect.TypeOf(time.Time{})

// ProfileService 用户资料修改。受保护字段对任何等级都拒绝。
type ProfileService struct {
	users   domain.UserRepository
	policy  domain.ProtectedFields
	pageMax int
	log     *zap.Logger
	reads   singleflight.Group
}

func NewProfileService(users domain.UserRepository, policy domain.ProtectedFields, pageMax int, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{users: users, policy: policy, pageMax: pageMax, log: log.Named("profile")}
}

func (s *ProfileService) mustExist(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return persist("load user", err)
	}
	if !ok {
		return domain.NotFound("user.not_found")
	}
	return nil
}

// UpdateUserField 检查顺序：用户存在 → 权限与保护名单 → 路径与取值 → 单列更新
func (s *ProfileService) UpdateUserField(ctx context.Context, id domain.Identity, userID, key string, value any) (err error) {
	defer func() { metrics.Observe(metrics.Profile, "update_field", err) }()

	if err := s.mustExist(ctx, userID); err != nil {
		return err
	}
	if !id.CanActOn(userID) {
		return domain.Forbidden("user.not_owner")
	}
	if s.policy.Denies(key) {
		s.log.Warn("protected field update rejected",
			zap.String("user_id", userID), zap.String("key", key),
			zap.Stringer("rank", id.Rank), zap.String("policy_version", s.policy.Version))
		return domain.Forbidden("user.field_protected")
	}
	f, ok := s.users.ResolveField(key)
	if !ok {
		return domain.Validation("user.unknown_field")
	}
	v, err := coerce(value, f.Type)
	if err != nil {
		return domain.Validation(fmt.Sprintf("user.invalid_value: %v", err))
	}
	if err := s.users.UpdateColumns(ctx, userID, map[string]any{f.Column: v}); err != nil {
		return persist("update user field", err)
	}
	return nil
}

// coerce 把 JSON 解出的值转换为列的 Go 类型
func coerce(value any, t reflect.Type) (any, error) {
	if t.Kind() == reflect.Pointer {
		if value == nil {
			return nil, nil
		}
		inner, err := coerce(value, t.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(reflect.ValueOf(inner))
		return ptr.Interface(), nil
	}
	if value == nil {
		return nil, fmt.Errorf("null not allowed")
	}
	rv := reflect.ValueOf(value)
	out := reflect.New(t).Elem()

	switch {
	case t == timeType:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("want RFC3339 time")
			}
			return ts, nil
		}
		return nil, fmt.Errorf("want time, got %T", value)

	case t.Kind() == reflect.String:
		if rv.Kind() != reflect.String {
			return nil, fmt.Errorf("want string, got %T", value)
		}
		out.SetString(rv.String())

	case t.Kind() == reflect.Bool:
		if rv.Kind() != reflect.Bool {
			return nil, fmt.Errorf("want bool, got %T", value)
		}
		out.SetBool(rv.Bool())

	case out.CanInt():
		var n int64
		switch {
		case rv.CanInt():
			n = rv.Int()
		case rv.CanFloat():
			f := rv.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
				return nil, fmt.Errorf("want integer")
			}
			n = int64(f)
		default:
			return nil, fmt.Errorf("want integer, got %T", value)
		}
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("integer out of range")
		}
		out.SetInt(n)

	case out.CanFloat():
		switch {
		case rv.CanFloat():
			out.SetFloat(rv.Float())
		case rv.CanInt():
			out.SetFloat(float64(rv.Int()))
		default:
			return nil, fmt.Errorf("want number, got %T", value)
		}

	default:
		return nil, fmt.Errorf("unsupported field type %s", t)
	}
	return out.Interface(), nil
}

func (s *ProfileService) UpdatePresence(ctx context.Context, userID string, p domain.Presence) (err error) {
	defer func() { metrics.Observe(metrics.Profile, "update_presence", err) }()

	if err := s.mustExist(ctx, userID); err != nil {
		return err
	}
	if p.Last.IsZero() {
		p.Last = time.Now()
	}
	err = s.users.UpdateColumns(ctx, userID, map[string]any{
		"online_online": p.Online,
		"online_mode":   p.Mode,
		"online_last":   p.Last,
	})
	if err != nil {
		return persist("update presence", err)
	}
	return nil
}

func (s *ProfileService) UpdatePhoto(ctx context.Context, userID, path string, kind domain.PhotoKind) (err error) {
	defer func() { metrics.Observe(metrics.Profile, "update_photo", err) }()

	if err := s.mustExist(ctx, userID); err != nil {
		return err
	}
	col, ok := kind.Column()
	if !ok {
		return domain.Validation("user.invalid_photo_kind")
	}
	if err := validate.Var(path, "required,max=255"); err != nil {
		return domain.Validation("user.invalid_photo_path")
	}
	if err := s.users.UpdateColumns(ctx, userID, map[string]any{col: path}); err != nil {
		return persist("update photo", err)
	}
	return nil
}

func (s *ProfileService) AddUserReaction(ctx context.Context, targetID, authorID string, polarity domain.Polarity) (err error) {
	defer func() { metrics.Observe(metrics.Profile, "add_reaction", err) }()

	if !polarity.Valid() {
		return domain.Validation("user.invalid_reaction")
	}
	if err := s.mustExist(ctx, targetID); err != nil {
		return err
	}
	inserted, err := s.users.InsertReaction(ctx, &domain.UserReaction{
		TargetID: targetID, AuthorID: authorID, Type: polarity,
	})
	if err != nil {
		return persist("insert user reaction", err)
	}
	if !inserted {
		return domain.Conflict("user.reaction_exists")
	}
	return nil
}

func (s *ProfileService) RemoveUserReaction(ctx context.Context, targetID, authorID string) (err error) {
	defer func() { metrics.Observe(metrics.Profile, "remove_reaction", err) }()

	if _, err := s.users.DeleteReactions(ctx, targetID, authorID); err != nil {
		return persist("delete user reaction", err)
	}
	return nil
}

// DeleteUser 无条件删除，用户不存在也算成功
func (s *ProfileService) DeleteUser(ctx context.Context, userID string) (err error) {
	defer func() { metrics.Observe(metrics.Profile, "delete_user", err) }()

	n, err := s.users.Delete(ctx, userID)
	if err != nil {
		return persist("delete user", err)
	}
	if n > 0 {
		s.log.Info("user deleted", zap.String("user_id", userID))
	}
	return nil
}

// GetPublicUser 同一用户的并发读合并为一次查询，结果不跨调用缓存。
// 合并的查询不跟随首个调用方的取消。
func (s *ProfileService) GetPublicUser(ctx context.Context, userID string) (*domain.PublicUser, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.reads.Do(userID, func() (any, error) {
		u, err := s.users.FindPublic(shared, userID)
		if err != nil {
			return nil, persist("load user", err)
		}
		if u == nil {
			return nil, domain.NotFound("user.not_found")
		}
		pub := u.Public()
		return &pub, nil
	})
	if err != nil {
		return nil, err
	}
	pub := *v.(*domain.PublicUser)
	return &pub, nil
}

func (s *ProfileService) ListPublicUsers(ctx context.Context, offset, limit int) ([]domain.PublicUser, int64, error) {
	offset, limit = page(offset, limit, s.pageMax)
	items, total, err := s.users.ListPublic(ctx, offset, limit)
	if err != nil {
		return nil, 0, persist("list users", err)
	}
	out := make([]domain.PublicUser, 0, len(items))
	for i := range items {
		out = append(out, items[i].Public())
	}
	return out, total, nil
}
