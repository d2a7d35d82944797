package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gin-gorm-market/internal/domain"
)

type Claims struct {
	UID  string `json:"uid"`
	Rank string `json:"rank"` // SELLER / MODERATOR / ADMINISTRATOR，空为普通登录用户
	jwt.RegisteredClaims
}

// Identity 将声明转换为核心使用的身份；未知等级视为无效令牌
func (c *Claims) Identity() (domain.Identity, error) {
	rank, err := domain.ParseRank(c.Rank)
	if err != nil {
		return domain.Identity{}, err
	}
	if c.UID == "" {
		return domain.Identity{}, errors.New("missing uid")
	}
	return domain.Identity{UserID: c.UID, Rank: rank}, nil
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWTer) Issue(uid string, rank domain.Rank) (string, error) {
	now := time.Now()
	r := ""
	if rank != domain.RankAuthenticated {
		r = rank.String()
	}
	claims := Claims{
		UID:  uid,
		Rank: r,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
