package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gin-gorm-market/internal/core/database/dbtest"
	"gin-gorm-market/internal/domain"
)

func seedProduct(t *testing.T, r *ProductRepo, seller string, market int, status domain.ProductStatus, at time.Time) *domain.Product {
	t.Helper()
	p := &domain.Product{SellerID: seller, MarketID: market, Status: status, Title: "item", CreatedAt: at}
	require.NoError(t, r.Create(context.Background(), p))
	return p
}

func TestProductRepo_FindByID_Missing(t *testing.T) {
	r := NewProductRepo(dbtest.Open(t))
	p, err := r.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductRepo_MarkApproved_OnlyFromPending(t *testing.T) {
	ctx := context.Background()
	r := NewProductRepo(dbtest.Open(t))
	p := seedProduct(t, r, "s1", 1, domain.StatusPending, time.Now())

	changed, err := r.MarkApproved(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.MarkApproved(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = r.MarkApproved(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
}

func TestProductRepo_List_Visibility(t *testing.T) {
	ctx := context.Background()
	r := NewProductRepo(dbtest.Open(t))
	now := time.Now()
	approved := seedProduct(t, r, "s1", 1, domain.StatusApproved, now.Add(-3*time.Minute))
	ownPending := seedProduct(t, r, "s2", 1, domain.StatusPending, now.Add(-2*time.Minute))
	seedProduct(t, r, "s1", 2, domain.StatusPending, now.Add(-time.Minute))

	q := domain.ProductQuery{Filter: domain.FilterNewest, Limit: 50}

	items, total, err := r.List(ctx, q, domain.Identity{UserID: "s2", Rank: domain.RankSeller})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, ownPending.ID, items[0].ID)
	assert.Equal(t, approved.ID, items[1].ID)

	_, total, err = r.List(ctx, q, domain.Identity{UserID: "mod", Rank: domain.RankModerator})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	q.MarketID = 2
	items, total, err = r.List(ctx, q, domain.Identity{UserID: "s2"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, items)
}

func TestProductRepo_List_FilterOrder(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	r := NewProductRepo(db)
	e := NewEngagementRepo(db)
	now := time.Now()
	older := seedProduct(t, r, "s1", 1, domain.StatusApproved, now.Add(-time.Hour))
	newer := seedProduct(t, r, "s1", 1, domain.StatusApproved, now)

	for _, a := range []string{"u1", "u2"} {
		_, err := e.InsertReaction(ctx, &domain.ProductReaction{ProductID: older.ID, AuthorID: a, Type: domain.Upvote})
		require.NoError(t, err)
	}
	_, err := e.InsertReaction(ctx, &domain.ProductReaction{ProductID: newer.ID, AuthorID: "u3", Type: domain.Downvote})
	require.NoError(t, err)

	viewer := domain.Identity{UserID: "v"}
	cases := []struct {
		filter domain.ListFilter
		first  string
	}{
		{domain.FilterNewest, newer.ID},
		{domain.FilterOldest, older.ID},
		{domain.FilterTop, older.ID},
	}
	for _, c := range cases {
		items, _, err := r.List(ctx, domain.ProductQuery{Filter: c.filter, Limit: 10}, viewer)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, c.first, items[0].ID, "filter %d", c.filter)
	}

	items, total, err := r.List(ctx, domain.ProductQuery{Filter: domain.FilterNewest, Offset: 1, Limit: 1}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, older.ID, items[0].ID)
}

func TestProductRepo_ListByStatus(t *testing.T) {
	ctx := context.Background()
	r := NewProductRepo(dbtest.Open(t))
	now := time.Now()
	a := seedProduct(t, r, "s1", 1, domain.StatusPending, now.Add(-time.Minute))
	seedProduct(t, r, "s1", 1, domain.StatusApproved, now)
	b := seedProduct(t, r, "s2", 1, domain.StatusPending, now)

	items, err := r.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, b.ID, items[1].ID)
}

func TestProductRepo_Delete_Cascade(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	r := NewProductRepo(db)
	e := NewEngagementRepo(db)

	seed := func() *domain.Product {
		p := seedProduct(t, r, "s1", 1, domain.StatusApproved, time.Now())
		require.NoError(t, e.InsertComment(ctx, &domain.Comment{ProductID: p.ID, AuthorID: "u1", Body: "hi"}))
		_, err := e.InsertReaction(ctx, &domain.ProductReaction{ProductID: p.ID, AuthorID: "u1"})
		require.NoError(t, err)
		_, err = e.InsertBuyer(ctx, &domain.Buyer{ProductID: p.ID, UserID: "u1"})
		require.NoError(t, err)
		return p
	}

	p := seed()
	deleted, err := r.Delete(ctx, p.ID, domain.FullCascade())
	require.NoError(t, err)
	assert.True(t, deleted)
	for _, has := range []func(context.Context, string, string) (bool, error){e.HasComment, e.HasReaction, e.HasBuyer} {
		ok, err := has(ctx, p.ID, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	q := seed()
	deleted, err = r.Delete(ctx, q.ID, domain.CascadePolicy{Reactions: true})
	require.NoError(t, err)
	assert.True(t, deleted)
	ok, _ := e.HasComment(ctx, q.ID, "u1")
	assert.True(t, ok)
	ok, _ = e.HasReaction(ctx, q.ID, "u1")
	assert.False(t, ok)
	ok, _ = e.HasBuyer(ctx, q.ID, "u1")
	assert.True(t, ok)

	deleted, err = r.Delete(ctx, q.ID, domain.FullCascade())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestProductRepo_FindWithEngagement(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	r := NewProductRepo(db)
	e := NewEngagementRepo(db)
	p := seedProduct(t, r, "s1", 1, domain.StatusApproved, time.Now())
	require.NoError(t, e.InsertComment(ctx, &domain.Comment{ProductID: p.ID, AuthorID: "u1", Body: "first"}))
	_, err := e.InsertReaction(ctx, &domain.ProductReaction{ProductID: p.ID, AuthorID: "u2", Type: domain.Upvote})
	require.NoError(t, err)

	got, err := r.FindWithEngagement(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Comments, 1)
	assert.Len(t, got.Reactions, 1)
	assert.Empty(t, got.Buyers)
	assert.Equal(t, domain.ReactionTally{Upvotes: 1}, got.Tally())
}
