package handlers

import (
	"time"

	"yamdb/internal/models"
	"yamdb/internal/utils"
)

type signupView struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userView struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func newUserView(u *models.User) userView {
	return userView{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

func newUserViews(users []models.User) []userView {
	out := make([]userView, len(users))
	for i := range users {
		out[i] = newUserView(&users[i])
	}
	return out
}

// slugView renders both categories and genres.
type slugView struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newCategoryViews(cs []models.Category) []slugView {
	out := make([]slugView, len(cs))
	for i, c := range cs {
		out[i] = slugView{Name: c.Name, Slug: c.Slug}
	}
	return out
}

func newGenreViews(gs []models.Genre) []slugView {
	out := make([]slugView, len(gs))
	for i, g := range gs {
		out[i] = slugView{Name: g.Name, Slug: g.Slug}
	}
	return out
}

type titleView struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Year        int        `json:"year"`
	Description string     `json:"description"`
	Category    *slugView  `json:"category"`
	Genre       []slugView `json:"genre"`
	Rating      *float64   `json:"rating"`
}

func newTitleView(t *models.Title) titleView {
	v := titleView{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       newGenreViews(t.Genres),
		Rating:      t.Rating,
	}
	if t.Category != nil {
		v.Category = &slugView{Name: t.Category.Name, Slug: t.Category.Slug}
	}
	return v
}

func newTitleViews(ts []models.Title) []titleView {
	out := make([]titleView, len(ts))
	for i := range ts {
		out[i] = newTitleView(&ts[i])
	}
	return out
}

type reviewView struct {
	ID       uint      `json:"id"`
	Title    uint      `json:"title"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	TextHTML string    `json:"text_html"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

func newReviewView(r *models.Review) reviewView {
	v := reviewView{
		ID:       r.ID,
		Title:    r.TitleID,
		Text:     r.Text,
		TextHTML: utils.RenderMarkdown(r.Text),
		Score:    r.Score,
		PubDate:  r.PubDate,
	}
	if r.Author != nil {
		v.Author = r.Author.Username
	}
	return v
}

func newReviewViews(rs []models.Review) []reviewView {
	out := make([]reviewView, len(rs))
	for i := range rs {
		out[i] = newReviewView(&rs[i])
	}
	return out
}

type commentView struct {
	ID       uint      `json:"id"`
	Review   uint      `json:"review"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	TextHTML string    `json:"text_html"`
	PubDate  time.Time `json:"pub_date"`
}

func newCommentView(c *models.Comment) commentView {
	v := commentView{
		ID:       c.ID,
		Review:   c.ReviewID,
		Text:     c.Text,
		TextHTML: utils.RenderMarkdown(c.Text),
		PubDate:  c.PubDate,
	}
	if c.Author != nil {
		v.Author = c.Author.Username
	}
	return v
}

func newCommentViews(cs []models.Comment) []commentView {
	out := make([]commentView, len(cs))
	for i := range cs {
		out[i] = newCommentView(&cs[i])
	}
	return out
}
