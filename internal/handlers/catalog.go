package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/services"
)

// CatalogHandler serves categories and genres.
type CatalogHandler struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

type slugRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page := pageFrom(c)
	cats, total, err := h.catalog.ListCategories(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, newCategoryViews(cats)))
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req slugRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, slugView{Name: cat.Name, Slug: cat.Slug})
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListGenres(c *gin.Context) {
	page := pageFrom(c)
	genres, total, err := h.catalog.ListGenres(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, newGenreViews(genres)))
}

func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req slugRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := h.catalog.CreateGenre(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, slugView{Name: genre.Name, Slug: genre.Slug})
}

func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	if err := h.catalog.DeleteGenre(c.Request.Context(), c.Param("slug")); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
