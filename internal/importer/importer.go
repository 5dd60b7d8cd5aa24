// Package importer loads the seed CSV files shipped with the project into
// the database. Rows are matched by id; existing rows are left untouched,
// so running an import twice is harmless.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/models"
	"yamdb/internal/services"
)

// Result counts what happened to one file.
type Result struct {
	File    string
	Created int
	Skipped int
	Missing bool
}

type loader func(tx *gorm.DB, rec record) (bool, error)

type source struct {
	file string
	load loader
}

// Files are loaded in FK order.
var sources = []source{
	{"users.csv", loadUser},
	{"category.csv", loadCategory},
	{"genre.csv", loadGenre},
	{"titles.csv", loadTitle},
	{"genre_title.csv", loadGenreTitle},
	{"review.csv", loadReview},
	{"comments.csv", loadComment},
}

// Tables whose ids are assigned from a sequence on Postgres.
var sequenced = []string{"users", "categories", "genres", "titles", "reviews", "comments"}

type Importer struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Importer {
	return &Importer{db: db, log: log}
}

// Run imports every known file found in dir inside one transaction. Any
// bad row rolls back the whole import.
func (im *Importer) Run(ctx context.Context, dir string) ([]Result, error) {
	var results []Result
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		results = results[:0]
		for _, src := range sources {
			res, err := importFile(tx, filepath.Join(dir, src.file), src.load)
			if err != nil {
				return err
			}
			res.File = src.file
			results = append(results, res)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Missing {
			im.log.Warn("CSV file not found, skipped", zap.String("file", res.File))
			continue
		}
		im.log.Info("CSV file imported",
			zap.String("file", res.File),
			zap.Int("created", res.Created),
			zap.Int("skipped", res.Skipped),
		)
	}
	return results, nil
}

func importFile(tx *gorm.DB, path string, load loader) (Result, error) {
	var res Result
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Missing = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	defer f.Close()

	name := filepath.Base(path)
	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("%s: read header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		created, err := load(tx, record{cols: cols, row: row})
		if err != nil {
			return res, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

// getOrCreate inserts row unless a row with the same id already exists.
func getOrCreate[T any](tx *gorm.DB, id uint, row *T) (bool, error) {
	var n int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func loadUser(tx *gorm.DB, rec record) (bool, error) {
	id, err := rec.id("id")
	if err != nil {
		return false, err
	}
	role := models.Role(rec.str("role"))
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return false, fmt.Errorf("unknown role %q", role)
	}
	u := models.User{
		ID:        id,
		Username:  rec.str("username"),
		Email:     rec.str("email"),
		Role:      role,
		Bio:       rec.str("bio"),
		FirstName: rec.str("first_name"),
		LastName:  rec.str("last_name"),
		Password:  services.UnusablePassword(),
	}
	if !services.ValidUsername(u.Username) || u.Email == "" {
		return false, fmt.Errorf("invalid user %q <%s>", u.Username, u.Email)
	}
	return getOrCreate(tx, id, &u)
}

func loadCategory(tx *gorm.DB, rec record) (bool, error) {
	id, err := rec.id("id")
	if err != nil {
		return false, err
	}
	return getOrCreate(tx, id, &models.Category{ID: id, Name: rec.str("name"), Slug: rec.str("slug")})
}

func loadGenre(tx *gorm.DB, rec record) (bool, error) {
	id, err := rec.id("id")
	if err != nil {
		return false, err
	}
	return getOrCreate(tx, id, &models.Genre{ID: id, Name: rec.str("name"), Slug: rec.str("slug")})
}

func loadTitle(tx *gorm.DB, rec record) (bool, error) {
	id, err := rec.id("id")
	if err != nil {
		return false, err
	}
	year, err := rec.int("year")
	if err != nil {
		return false, err
	}
	t := models.Title{ID: id, Name: rec.str("name"), Year: year, Description: rec.str("description")}
	if rec.str("category", "category_id") != "" {
		cid, err := rec.id("category", "category_id")
		if err != nil {
			return false, err
		}
		t.CategoryID = &cid
	}
	return getOrCreate(tx, id, &t)
}

func loadGenreTitle(tx *gorm.DB, rec record) (bool, error) {
	titleID, err := rec.id("title_id", "title")
	if err != nil {
		return false, err
	}
	genreID, err := rec.id("genre_id", "genre")
	if err != nil {
		return false, err
	}
	var n int64
	if err := tx.Model(&models.TitleGenre{}).Where("title_id = ? AND genre_id = ?", titleID, genreID).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	link := models.TitleGenre{TitleID: titleID, GenreID: genreID}
	if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
		return false, err
	}
	return true, nil
}

func loadReview(tx *gorm.DB, rec record) (bool, error) {
	id, err := rec.id("id")
	if err != nil {
		return false, err
	}
	r := models.Review{ID: id, Text: rec.str("text")}
	if r.TitleID, err = rec.id("title_id", "title"); err != nil {
		return false, err
	}
	if r.AuthorID, err = rec.id("author", "author_id"); err != nil {
		return false, err
	}
	if r.Score, err = rec.int("score"); err != nil {
		return false, err
	}
	if r.Score < services.MinScore || r.Score > services.MaxScore {
		return false, fmt.Errorf("score %d out of range", r.Score)
	}
	if r.PubDate, err = rec.time("pub_date"); err != nil {
		return false, err
	}
	return getOrCreate(tx, id, &r)
}

func loadComment(tx *gorm.DB, rec record) (bool, error) {
	id, err := rec.id("id")
	if err != nil {
		return false, err
	}
	c := models.Comment{ID: id, Text: rec.str("text")}
	if c.ReviewID, err = rec.id("review_id", "review"); err != nil {
		return false, err
	}
	if c.AuthorID, err = rec.id("author", "author_id"); err != nil {
		return false, err
	}
	if c.PubDate, err = rec.time("pub_date"); err != nil {
		return false, err
	}
	return getOrCreate(tx, id, &c)
}

// resetSequences moves Postgres id sequences past the imported ids.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range sequenced {
		q := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table,
		)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}

// record reads columns by header name.
type record struct {
	cols map[string]int
	row  []string
}

// str returns the first named column present in the header.
func (r record) str(names ...string) string {
	for _, name := range names {
		if i, ok := r.cols[name]; ok && i < len(r.row) {
			return strings.TrimSpace(r.row[i])
		}
	}
	return ""
}

func (r record) id(names ...string) (uint, error) {
	v := r.str(names...)
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("column %s: invalid id %q", names[0], v)
	}
	return uint(n), nil
}

func (r record) int(names ...string) (int, error) {
	v := r.str(names...)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: invalid number %q", names[0], v)
	}
	return n, nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func (r record) time(names ...string) (time.Time, error) {
	v := r.str(names...)
	if v == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: invalid timestamp %q", names[0], v)
}
