package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/services"
)

type TitleHandler struct {
	titles *services.TitleService
	log    *zap.Logger
}

func NewTitleHandler(titles *services.TitleService, log *zap.Logger) *TitleHandler {
	return &TitleHandler{titles: titles, log: log}
}

type titleRequest struct {
	Name        *string      `json:"name" binding:"omitempty,max=256"`
	Year        *int         `json:"year"`
	Description *string      `json:"description"`
	Category    nullableSlug `json:"category"`
	Genre       []string     `json:"genre"`
}

// nullableSlug tells an absent field from an explicit null. Both null and
// "" clear the value.
type nullableSlug struct {
	Set   bool
	Value string
}

func (n *nullableSlug) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = ""
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

func (r titleRequest) input() services.TitleInput {
	in := services.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Genres:      r.Genre,
	}
	if r.Category.Set {
		slug := r.Category.Value
		in.Category = &slug
	}
	return in
}

// List supports ?category=<slug>&genre=<slug>&name=<exact>&year=<int>.
func (h *TitleHandler) List(c *gin.Context) {
	q := services.TitleQuery{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, h.log, apperr.Validation("year", "Enter a whole number."))
			return
		}
		q.Year = year
	}

	page := pageFrom(c)
	titles, total, err := h.titles.List(c.Request.Context(), q, page)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, newTitleViews(titles)))
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	title, err := h.titles.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTitleView(title))
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titles.Create(c.Request.Context(), req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newTitleView(title))
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titles.Update(c.Request.Context(), id, req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTitleView(title))
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	if err := h.titles.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
