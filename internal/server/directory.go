package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gradscout/gradscout/internal/index"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/runtime"
	"github.com/gradscout/gradscout/internal/store"
)

// DirectoryHandler exposes the stored faculty and program directory, plus a
// full-text search over everything the refresher has indexed.
type DirectoryHandler struct {
	Store *store.Store
	Index *index.Index
}

func (h *DirectoryHandler) Register(g *echo.Group, secret []byte) {
	mw := runtime.EchoAuthMiddleware(secret)
	g.GET("/faculty", h.faculty, mw)
	g.GET("/programs", h.programs, mw)
	g.GET("/search", h.search, mw)
}

// Faculty
//
//	@Summary	List faculty by research area
//	@Tags		directory
//	@Produce	json
//	@Param		area		query		string	true	"Research area (comma separated)"
//	@Param		university	query		string	false	"University filter (comma separated)"
//	@Param		limit		query		int		false	"Max results"
//	@Success	200			{array}		match.Candidate
//	@Failure	400			{object}	HTTPError
//	@Router		/api/faculty [get]
func (h *DirectoryHandler) faculty(c echo.Context) error {
	criteria, err := directoryCriteria(c, match.IntentFacultySearch)
	if err != nil {
		return err
	}
	candidates, err := h.Store.SearchCandidates(c.Request().Context(), criteria)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, truncate(candidates, c.QueryParam("limit")))
}

// Programs
//
//	@Summary	List programs by research area
//	@Tags		directory
//	@Produce	json
//	@Param		area	query		string	true	"Research area (comma separated)"
//	@Param		degree	query		string	false	"Degree type filter"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{array}		match.Candidate
//	@Failure	400		{object}	HTTPError
//	@Router		/api/programs [get]
func (h *DirectoryHandler) programs(c echo.Context) error {
	criteria, err := directoryCriteria(c, match.IntentProgramSearch)
	if err != nil {
		return err
	}
	if degree := c.QueryParam("degree"); degree != "" {
		criteria.DegreeTypes = splitParam(degree)
	}
	candidates, err := h.Store.SearchCandidates(c.Request().Context(), criteria)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, truncate(candidates, c.QueryParam("limit")))
}

// Search
//
//	@Summary	Full-text search over the indexed directory
//	@Tags		directory
//	@Produce	json
//	@Param		q	query		string	true	"Query string"
//	@Success	200	{object}	SearchResponse
//	@Failure	400	{object}	HTTPError
//	@Router		/api/search [get]
func (h *DirectoryHandler) search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	hits, err := h.Index.Search(q, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hits == nil {
		hits = []index.Hit{}
	}
	return c.JSON(http.StatusOK, SearchResponse{Query: q, Hits: hits})
}

func directoryCriteria(c echo.Context, intent match.Intent) (match.ParsedCriteria, error) {
	area := c.QueryParam("area")
	if area == "" {
		return match.ParsedCriteria{}, echo.NewHTTPError(http.StatusBadRequest, "area is required")
	}
	var areas []string
	for _, raw := range splitParam(area) {
		if canonical, ok := match.NormalizeArea(raw); ok {
			areas = append(areas, canonical)
		} else {
			areas = append(areas, strings.ToLower(raw))
		}
	}
	return match.ParsedCriteria{
		Intent:        intent,
		ResearchAreas: areas,
		Universities:  splitParam(c.QueryParam("university")),
	}, nil
}

// truncate applies the caller's ?limit= to the result set; non-numeric or
// missing limits return the full set.
func truncate(candidates []match.Candidate, limit string) []match.Candidate {
	if candidates == nil {
		return []match.Candidate{}
	}
	k, err := strconv.Atoi(limit)
	if err != nil || k <= 0 || k >= len(candidates) {
		return candidates
	}
	return candidates[:k]
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
