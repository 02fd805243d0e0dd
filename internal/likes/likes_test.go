package likes

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavestore/internal/db"
	"github.com/llehouerou/wavestore/internal/library"
)

func setup(t *testing.T, n int) (*Likes, *sqlx.DB, []int64) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, filepath.Join(t.TempDir(), "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	lib := library.New(conn)
	ids := make([]int64, n)
	for i := range n {
		ids[i], err = lib.InsertPlayable(ctx, library.Fields{
			Title:     fmt.Sprintf("Track %d", i+1),
			SourceURL: fmt.Sprintf("/music/%d.flac", i+1),
		})
		require.NoError(t, err)
	}
	return New(conn), conn, ids
}

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestLikeUnlike(t *testing.T) {
	ctx := context.Background()
	l, _, ids := setup(t, 1)

	liked, err := l.IsLiked(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, l.Like(ctx, ids[0]))
	require.NoError(t, l.Like(ctx, ids[0]))
	liked, err = l.IsLiked(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, liked)

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, l.Unlike(ctx, ids[0]))
	require.NoError(t, l.Unlike(ctx, ids[0]))
	liked, err = l.IsLiked(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLike_UnknownPlayable(t *testing.T) {
	l, _, _ := setup(t, 0)
	assert.ErrorIs(t, l.Like(context.Background(), 42), db.ErrReferentialIntegrity)
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	l, _, ids := setup(t, 1)

	state, err := l.Toggle(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, state)

	state, err = l.Toggle(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, state)

	_, err = l.Toggle(ctx, 999)
	assert.ErrorIs(t, err, db.ErrReferentialIntegrity)
}

func TestLiked_Order(t *testing.T) {
	ctx := context.Background()
	l, _, ids := setup(t, 4)

	l.Now = fixedClock(100)
	require.NoError(t, l.Like(ctx, ids[2]))
	l.Now = fixedClock(200)
	require.NoError(t, l.Like(ctx, ids[0]))
	require.NoError(t, l.Like(ctx, ids[3]))
	l.Now = fixedClock(300)
	require.NoError(t, l.Like(ctx, ids[2])) // already liked, keeps time 100

	got, err := l.Liked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[3], ids[0], ids[2]}, got)
}

func TestLikedSet(t *testing.T) {
	ctx := context.Background()
	l, _, ids := setup(t, 3)

	require.NoError(t, l.Like(ctx, ids[0]))
	require.NoError(t, l.Like(ctx, ids[2]))

	set, err := l.LikedSet(ctx, []int64{ids[0], ids[1]})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{ids[0]: true}, set)

	all, err := l.LikedSet(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{ids[0]: true, ids[2]: true}, all)

	empty, err := l.LikedSet(ctx, []int64{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCascadeOnPlayableDelete(t *testing.T) {
	ctx := context.Background()
	l, conn, ids := setup(t, 2)

	require.NoError(t, l.Like(ctx, ids[0]))
	require.NoError(t, l.Like(ctx, ids[1]))
	require.NoError(t, library.New(conn).DeletePlayable(ctx, ids[0]))

	got, err := l.Liked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[1]}, got)
}
