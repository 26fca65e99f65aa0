package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

// SearchHandler exposes the cross-entity search endpoint.
type SearchHandler struct {
	service *service.SearchService
}

// NewSearchHandler constructs a search handler.
func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Search returns matches across terms, courses, and assessments. A blank
// query yields an empty list.
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), ownerFromContext(c), c.Query("q"), c.Query("sort"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}
