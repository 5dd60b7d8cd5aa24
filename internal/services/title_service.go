package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
	"yamdb/internal/store"
	"yamdb/internal/utils"
)

// TitleInput is a partial title. Category and genres are given by slug.
// A nil Genres leaves the links alone; an empty one clears them.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      []string
}

// TitleQuery holds the list filters. Unknown slugs are 404.
type TitleQuery struct {
	Category string
	Genre    string
	Name     string
	Year     int
}

type TitleService struct {
	store *store.Store
	now   func() time.Time
	log   *zap.Logger
}

func NewTitleService(st *store.Store, now func() time.Time, log *zap.Logger) *TitleService {
	if now == nil {
		now = time.Now
	}
	return &TitleService{store: st, now: now, log: log}
}

func (s *TitleService) List(ctx context.Context, q TitleQuery, page store.Page) ([]models.Title, int64, error) {
	f := store.TitleFilter{Name: strings.TrimSpace(q.Name), Year: q.Year}
	if q.Category != "" {
		c, err := s.store.CategoryBySlug(ctx, q.Category)
		if err != nil {
			return nil, 0, err
		}
		f.CategoryID = c.ID
	}
	if q.Genre != "" {
		g, err := s.store.GenreBySlug(ctx, q.Genre)
		if err != nil {
			return nil, 0, err
		}
		f.GenreID = g.ID
	}
	return s.store.ListTitles(ctx, f, page)
}

func (s *TitleService) Get(ctx context.Context, id uint) (*models.Title, error) {
	return s.store.TitleByID(ctx, id)
}

func (s *TitleService) Create(ctx context.Context, in TitleInput) (*models.Title, error) {
	ve := &apperr.ValidationError{}
	if in.Name == nil {
		ve.Add("name", "This field is required.")
	}
	if in.Year == nil {
		ve.Add("year", "This field is required.")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	t := &models.Title{}
	genreIDs, err := s.apply(ctx, t, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTitle(ctx, t, genreIDs); err != nil {
		return nil, err
	}
	s.log.Info("Title created", zap.Uint("title_id", t.ID), zap.String("name", t.Name))
	return s.store.TitleByID(ctx, t.ID)
}

func (s *TitleService) Update(ctx context.Context, id uint, in TitleInput) (*models.Title, error) {
	t, err := s.store.TitleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *t

	genreIDs, err := s.apply(ctx, t, in)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if t.Name != before.Name {
		fields["name"] = t.Name
	}
	if t.Year != before.Year {
		fields["year"] = t.Year
	}
	if t.Description != before.Description {
		fields["description"] = t.Description
	}
	if in.Category != nil {
		fields["category_id"] = t.CategoryID
	}

	if err := s.store.UpdateTitle(ctx, id, fields, genreIDs); err != nil {
		return nil, err
	}
	return s.store.TitleByID(ctx, id)
}

func (s *TitleService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteTitle(ctx, id); err != nil {
		return err
	}
	s.log.Info("Title deleted", zap.Uint("title_id", id))
	return nil
}

// apply validates in, copies it onto t and resolves genre slugs to ids.
// A nil result means genres were not given.
func (s *TitleService) apply(ctx context.Context, t *models.Title, in TitleInput) ([]uint, error) {
	ve := &apperr.ValidationError{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			ve.Add("name", "This field may not be blank.")
		case utf8.RuneCountInString(name) > NameMaxLength:
			ve.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", NameMaxLength))
		}
		t.Name = name
	}
	if in.Year != nil {
		if *in.Year > s.now().Year() {
			ve.Add("year", "The release year cannot be later than the current year.")
		}
		t.Year = *in.Year
	}
	if in.Description != nil {
		t.Description = utils.StripHTML(*in.Description)
	}

	if in.Category != nil {
		slug := strings.TrimSpace(*in.Category)
		if slug == "" {
			t.CategoryID = nil
			t.Category = nil
		} else {
			c, err := s.store.CategoryBySlug(ctx, slug)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				ve.Add("category", fmt.Sprintf("Object with slug=%s does not exist.", slug))
			case err != nil:
				return nil, err
			default:
				t.CategoryID = &c.ID
				t.Category = c
			}
		}
	}

	var genreIDs []uint
	if in.Genres != nil {
		genres, err := s.store.GenresBySlugs(ctx, in.Genres)
		if err != nil {
			return nil, err
		}
		known := make(map[string]uint, len(genres))
		for _, g := range genres {
			known[g.Slug] = g.ID
		}
		genreIDs = make([]uint, 0, len(in.Genres))
		for _, slug := range in.Genres {
			id, ok := known[slug]
			if !ok {
				ve.Add("genre", fmt.Sprintf("Object with slug=%s does not exist.", slug))
				continue
			}
			genreIDs = append(genreIDs, id)
		}
	}

	return genreIDs, ve.Err()
}
