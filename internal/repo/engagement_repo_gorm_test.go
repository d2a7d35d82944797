package repo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gin-gorm-market/internal/core/database/dbtest"
	"gin-gorm-market/internal/domain"
)

func TestEngagementRepo_InsertReaction_Unique(t *testing.T) {
	ctx := context.Background()
	e := NewEngagementRepo(dbtest.Open(t))

	ok, err := e.InsertReaction(ctx, &domain.ProductReaction{ProductID: "p1", AuthorID: "u1", Type: domain.Upvote})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.InsertReaction(ctx, &domain.ProductReaction{ProductID: "p1", AuthorID: "u1", Type: domain.Downvote})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.InsertReaction(ctx, &domain.ProductReaction{ProductID: "p2", AuthorID: "u1", Type: domain.Downvote})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngagementRepo_InsertReaction_Concurrent(t *testing.T) {
	ctx := context.Background()
	e := NewEngagementRepo(dbtest.Open(t))

	const n = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := e.InsertReaction(ctx, &domain.ProductReaction{ProductID: "p1", AuthorID: "u1", Type: domain.Upvote})
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())

	n2, err := e.DeleteReactions(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n2)
}

func TestEngagementRepo_Comments(t *testing.T) {
	ctx := context.Background()
	e := NewEngagementRepo(dbtest.Open(t))

	c1 := &domain.Comment{ProductID: "p1", AuthorID: "u1", Body: "a"}
	c2 := &domain.Comment{ProductID: "p1", AuthorID: "u1", Body: "b"}
	require.NoError(t, e.InsertComment(ctx, c1))
	require.NoError(t, e.InsertComment(ctx, c2))
	assert.NotEqual(t, c1.ID, c2.ID)

	got, err := e.FindComment(ctx, c1.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Body)

	n, err := e.DeleteComment(ctx, c1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = e.FindComment(ctx, c1.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := e.HasComment(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngagementRepo_Buyers(t *testing.T) {
	ctx := context.Background()
	e := NewEngagementRepo(dbtest.Open(t))

	ok, err := e.InsertBuyer(ctx, &domain.Buyer{ProductID: "p1", UserID: "b1"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = e.InsertBuyer(ctx, &domain.Buyer{ProductID: "p1", UserID: "b1"})
	require.NoError(t, err)
	assert.False(t, ok)

	has, err := e.HasBuyer(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.True(t, has)

	n, err := e.DeleteBuyer(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = e.DeleteBuyer(ctx, "p1", "b1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
