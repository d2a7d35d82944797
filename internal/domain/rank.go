package domain

import "strings"

// Rank 权限等级，按特权从低到高排序
type Rank int

const (
	RankAuthenticated Rank = iota
	RankSeller
	RankModerator
	RankAdministrator
)

func (r Rank) String() string {
	switch r {
	case RankSeller:
		return "SELLER"
	case RankModerator:
		return "MODERATOR"
	case RankAdministrator:
		return "ADMINISTRATOR"
	default:
		return "authenticated"
	}
}

// Elevated 版主或管理员
func (r Rank) Elevated() bool { return r >= RankModerator }

func (r Rank) AtLeast(min Rank) bool { return r >= min }

func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AUTHENTICATED":
		return RankAuthenticated, nil
	case "SELLER":
		return RankSeller, nil
	case "MODERATOR":
		return RankModerator, nil
	case "ADMINISTRATOR":
		return RankAdministrator, nil
	}
	return RankAuthenticated, Validation("unknown rank " + s)
}

// Identity 由外部身份上下文解析后传入核心
type Identity struct {
	UserID string
	Rank   Rank
}

// CanActOn 本人或高权限
func (id Identity) CanActOn(ownerID string) bool {
	return id.UserID == ownerID || id.Rank.Elevated()
}
