package release

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)        // GET /releases?title=&genre=&page=
	rg.GET("/:id", h.getByID) // GET /releases/:id
}

func (h *Handler) list(c *gin.Context) {
	q := SearchQuery{
		Title: c.Query("title"),
		Genre: c.Query("genre"),
		Page:  parseInt(c.Query("page"), 1),
	}

	items, total, err := h.Repo.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"page":  q.Page,
		"items": items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	rel, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rel)
}

// Latest serves the home page cards.
func (h *Handler) Latest(c *gin.Context) {
	cards, err := h.Repo.LastReleases(c.Request.Context(), 30)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cards})
}

// Genres serves the genre dimension for search filters.
func (h *Handler) Genres(c *gin.Context) {
	genres, err := h.Repo.Genres(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "genres failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
