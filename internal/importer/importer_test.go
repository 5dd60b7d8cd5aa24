package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yamdb/internal/models"
	"yamdb/internal/testutil"
)

var seed = map[string]string{
	"users.csv":       "id,username,email,role,bio,first_name,last_name\n100,bingobongo,bingobongo@yamdb.fake,user,,,\n101,capt_obvious,capt_obvious@yamdb.fake,admin,,,\n",
	"category.csv":    "id,name,slug\n1,Фильм,movie\n2,Книга,book\n",
	"genre.csv":       "id,name,slug\n1,Драма,drama\n2,Комедия,comedy\n",
	"titles.csv":      "id,name,year,category\n1,Побег из Шоушенка,1994,1\n2,Крестный отец,1972,\n",
	"genre_title.csv": "id,title_id,genre_id\n1,1,1\n2,1,2\n",
	"review.csv":      "id,title_id,text,author,score,pub_date\n1,1,Ещё раз,100,10,2019-09-24T21:08:21.567Z\n",
	"comments.csv":    "id,review_id,text,author,pub_date\n1,1,Согласен,101,2019-09-24T21:08:21.567Z\n",
}

func writeSeed(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestImportCreatesThenSkips(t *testing.T) {
	gdb := testutil.NewDB(t)
	im := New(gdb, zap.NewNop())
	dir := writeSeed(t, seed)

	results, err := im.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, len(sources))
	for _, res := range results {
		assert.False(t, res.Missing, res.File)
		assert.Zero(t, res.Skipped, res.File)
	}

	var admin models.User
	require.NoError(t, gdb.First(&admin, 101).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, len(admin.Password) > 1 && admin.Password[0] == '!')

	var untitled models.Title
	require.NoError(t, gdb.First(&untitled, 2).Error)
	assert.Nil(t, untitled.CategoryID)

	var review models.Review
	require.NoError(t, gdb.First(&review, 1).Error)
	assert.Equal(t, 2019, review.PubDate.Year())

	var links int64
	gdb.Model(&models.TitleGenre{}).Count(&links)
	assert.EqualValues(t, 2, links)

	results, err = im.Run(context.Background(), dir)
	require.NoError(t, err)
	for _, res := range results {
		assert.Zero(t, res.Created, res.File)
	}
}

func TestImportSkipsMissingFiles(t *testing.T) {
	gdb := testutil.NewDB(t)
	dir := writeSeed(t, map[string]string{"genre.csv": seed["genre.csv"]})

	results, err := New(gdb, zap.NewNop()).Run(context.Background(), dir)
	require.NoError(t, err)

	missing := 0
	for _, res := range results {
		if res.Missing {
			missing++
		}
	}
	assert.Equal(t, len(sources)-1, missing)
}

func TestImportRollsBackOnBadRow(t *testing.T) {
	gdb := testutil.NewDB(t)
	files := map[string]string{
		"genre.csv":  seed["genre.csv"],
		"review.csv": "id,title_id,text,author,score,pub_date\n1,1,text,100,11,\n",
	}
	_, err := New(gdb, zap.NewNop()).Run(context.Background(), writeSeed(t, files))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review.csv:2")

	var genres int64
	gdb.Model(&models.Genre{}).Count(&genres)
	assert.Zero(t, genres)
}
