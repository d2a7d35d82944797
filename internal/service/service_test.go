package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gin-gorm-market/internal/core/database/dbtest"
	"gin-gorm-market/internal/domain"
	"gin-gorm-market/internal/repo"
)

var (
	seller    = domain.Identity{UserID: "seller", Rank: domain.RankSeller}
	moderator = domain.Identity{UserID: "mod", Rank: domain.RankModerator}
	admin     = domain.Identity{UserID: "root", Rank: domain.RankAdministrator}
	buyer     = domain.Identity{UserID: "buyer", Rank: domain.RankAuthenticated}
	stranger  = domain.Identity{UserID: "stranger", Rank: domain.RankAuthenticated}
)

type fixture struct {
	db         *gorm.DB
	moderation *ModerationService
	engagement *EngagementService
	profile    *ProfileService
	users      *repo.UserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	products := repo.NewProductRepo(db)
	users, err := repo.NewUserRepo(db)
	require.NoError(t, err)
	return &fixture{
		db:         db,
		moderation: NewModerationService(products, domain.FullCascade(), 50, nil),
		engagement: NewEngagementService(products, repo.NewEngagementRepo(db), nil),
		profile:    NewProfileService(users, domain.DefaultProtectedFields(), 50, nil),
		users:      users,
	}
}

func requireKind(t *testing.T, err error, k domain.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, domain.KindOf(err), err.Error())
}
