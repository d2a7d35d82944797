package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedFieldsExactMatch(t *testing.T) {
	p := DefaultProtectedFields()
	assert.True(t, p.Denies("rank"))
	assert.True(t, p.Denies("email.token"))
	assert.True(t, p.Denies("__v"))
	assert.False(t, p.Denies("name"))
	assert.False(t, p.Denies("email.address"))
	// 精确匹配下子路径不受保护
	assert.False(t, p.Denies("stats.hidden"))
}

func TestProtectedFieldsSubtree(t *testing.T) {
	p := NewProtectedFields("2", true, []string{"stats", "suspension", " "})
	assert.True(t, p.Denies("stats"))
	assert.True(t, p.Denies("stats.hidden"))
	assert.True(t, p.Denies("suspension.until"))
	assert.False(t, p.Denies("statsx"))
	assert.False(t, p.Denies("online.mode"))
	assert.Equal(t, []string{"stats", "suspension"}, p.Fields())
}

func TestParseRank(t *testing.T) {
	cases := map[string]Rank{
		"":              RankAuthenticated,
		"seller":        RankSeller,
		"MODERATOR":     RankModerator,
		"ADMINISTRATOR": RankAdministrator,
	}
	for in, want := range cases {
		got, err := ParseRank(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseRank("ROOT")
	assert.True(t, IsKind(err, KindValidation))

	assert.False(t, RankSeller.Elevated())
	assert.True(t, RankModerator.Elevated())
	assert.True(t, RankAdministrator.AtLeast(RankSeller))
}

func TestParsePolarity(t *testing.T) {
	p, err := ParsePolarity("upvote")
	require.NoError(t, err)
	assert.Equal(t, Upvote, p)
	p, err = ParsePolarity("downvote")
	require.NoError(t, err)
	assert.Equal(t, Downvote, p)

	_, err = ParsePolarity("meh")
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, Polarity(2).Valid())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Conflict("dup"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindPersistence, KindOf(errors.New("boom")))

	base := errors.New("io")
	err := Persistence("save product", base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "save product: io", err.Error())
}

func TestProductVisibility(t *testing.T) {
	p := &Product{SellerID: "s1", Status: StatusPending}
	assert.True(t, p.VisibleTo(Identity{UserID: "s1", Rank: RankSeller}))
	assert.True(t, p.VisibleTo(Identity{UserID: "m", Rank: RankModerator}))
	assert.False(t, p.VisibleTo(Identity{UserID: "b", Rank: RankSeller}))

	p.Status = StatusApproved
	assert.True(t, p.VisibleTo(Identity{UserID: "b"}))
}

func TestPhotoKindColumn(t *testing.T) {
	col, ok := PhotoCover.Column()
	assert.True(t, ok)
	assert.Equal(t, "cover", col)
	_, ok = PhotoKind("banner").Column()
	assert.False(t, ok)
}
