// Movie HTTP handlers.
//
// This file exposes REST endpoints for movie resources:
//   - GET    /                         (welcome)
//   - GET    /movies                   (list all, ETag support)
//   - GET    /movies/{id}              (point lookup)
//   - GET    /movies/title/{title}     (first exact title match)
//   - GET    /movies/director/{director}
//   - GET    /movies/search            (exact-match conjunction)
//
// Lookups are case-sensitive and exact after trimming surrounding whitespace
// and Unicode NFC normalization, the same canonical form used on write.
//   - POST   /movies                   (create, Idempotency-Key support)
//   - PUT    /movies/{id}              (partial update)
//   - DELETE /movies/{id}
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-movie-catalog/internal/http/middleware"
	"github.com/tbourn/go-movie-catalog/internal/repo"
	"github.com/tbourn/go-movie-catalog/internal/services"
	"github.com/tbourn/go-movie-catalog/internal/utils"
)

const welcomeMessage = "HI! This website is for Movie search and estimate movie rates by reviews"

// movieID parses the :id path parameter, writing a 400 on failure.
func movieID(c *gin.Context) (int64, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "movie id must be a positive integer")
		return 0, false
	}
	return id, true
}

// Welcome godoc
// @ID          welcome
// @Summary     Welcome message
// @Tags        Meta
// @Produce     json
// @Success     200  {object}  handlers.WelcomeResponse
// @Router      / [get]
func (h *Handlers) Welcome(c *gin.Context) {
	ok(c, http.StatusOK, WelcomeResponse{Messages: welcomeMessage})
}

// ListMovies godoc
// @ID          listMovies
// @Summary     List all movies
// @Description Returns every movie in insertion order. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Movies
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {array}   handlers.MovieResponse
// @Header      200  {string}  ETag  "Weak ETag for current catalog"
// @Success     304  {string}  string  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Catalog is empty"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /movies [get]
func (h *Handlers) ListMovies(c *gin.Context) {
	ctx := c.Request.Context()

	if h.store != nil {
		count, maxTS, err := h.store.MoviesStats(ctx)
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("etag stats failed")
		} else if count > 0 {
			etag := moviesETag(count, maxTS)
			c.Header("ETag", etag)
			if etagMatches(c.GetHeader("If-None-Match"), etag) {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.movies.ListAll(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponses(items))
}

// GetMovie godoc
// @ID          getMovie
// @Summary     Get a movie by id
// @Tags        Movies
// @Produce     json
// @Param       id   path      int  true  "Movie ID"  minimum(1)
// @Success     200  {object}  handlers.MovieResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Movie not found"
// @Router      /movies/{id} [get]
func (h *Handlers) GetMovie(c *gin.Context) {
	id, valid := movieID(c)
	if !valid {
		return
	}
	m, err := h.movies.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponse(m))
}

// GetByTitle godoc
// @ID          getMovieByTitle
// @Summary     Find a movie by exact title
// @Description Returns the first (lowest id) movie whose title matches exactly (case-sensitive, after trimming surrounding whitespace). The title may contain "/".
// @Tags        Movies
// @Produce     json
// @Param       title  path      string  true  "Movie title"  example(Dune)
// @Success     200    {object}  handlers.MovieResponse
// @Failure     404    {object}  handlers.ErrorResponse  "No movie with that title"
// @Router      /movies/title/{title} [get]
func (h *Handlers) GetByTitle(c *gin.Context) {
	m, err := h.movies.FindByTitle(c.Request.Context(), catchAllParam(c, "title"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponse(m))
}

// GetByDirector godoc
// @ID          getMoviesByDirector
// @Summary     Find movies by exact director
// @Description Returns every movie whose director matches exactly (case-sensitive, after trimming surrounding whitespace). The name may contain "/".
// @Tags        Movies
// @Produce     json
// @Param       director  path     string  true  "Director name"  example(Denis Villeneuve)
// @Success     200       {array}  handlers.MovieResponse
// @Failure     404       {object} handlers.ErrorResponse  "No movies by that director"
// @Router      /movies/director/{director} [get]
func (h *Handlers) GetByDirector(c *gin.Context) {
	items, err := h.movies.FindByDirector(c.Request.Context(), catchAllParam(c, "director"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponses(items))
}

// SearchMovies godoc
// @ID          searchMovies
// @Summary     Search movies
// @Description Exact-match conjunction over the supplied fields (case-sensitive, after trimming surrounding whitespace). At least one is required.
// @Tags        Movies
// @Produce     json
// @Param       title     query    string  false  "Exact title"
// @Param       director  query    string  false  "Exact director"
// @Param       category  query    string  false  "Exact category"
// @Success     200       {array}  handlers.MovieResponse
// @Failure     400       {object} handlers.ErrorResponse  "No search field given"
// @Failure     404       {object} handlers.ErrorResponse  "No match"
// @Router      /movies/search [get]
func (h *Handlers) SearchMovies(c *gin.Context) {
	items, err := h.movies.Search(c.Request.Context(), services.MovieQuery{
		Title:    c.Query("title"),
		Director: c.Query("director"),
		Category: c.Query("category"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponses(items))
}

// CreateMovie godoc
// @ID          createMovie
// @Summary     Create a movie
// @Description Creates a movie without review or sentiment. Supports idempotent retries via the Idempotency-Key header.
// @Tags        Movies
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateMovieRequest  true  "Movie"
// @Success     201  {object}  handlers.MovieResponse
// @Header      201  {string}  Location  "URL of the new movie"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing field"
// @Failure     409  {object}  handlers.ErrorResponse  "Same title and director exists"
// @Router      /movies [post]
func (h *Handlers) CreateMovie(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindErrorMessage(err))
		return
	}

	key, hasKey := middleware.GetIdempotencyKey(c)
	scope := middleware.IdempotencyScope(c)
	if hasKey && h.store != nil && h.replayCreate(c, scope, key) {
		return
	}

	m, err := h.movies.Create(ctx, req.Title, req.Director, req.Category)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if hasKey && h.store != nil {
		if _, err := h.store.CreateIdempotency(ctx, scope, key, m.ID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Str("idempotency_key", key).Msg("store idempotency record")
		}
	}

	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+strconv.FormatInt(m.ID, 10))
	ok(c, http.StatusCreated, toMovieResponse(m))
}

// replayCreate serves a stored create result. It reports false when nothing
// can be replayed, including when the movie was deleted since.
func (h *Handlers) replayCreate(c *gin.Context, scope, key string) bool {
	ctx := c.Request.Context()
	rec, err := h.store.GetIdempotency(ctx, scope, key, time.Now().UTC())
	if err != nil || rec == nil {
		return false
	}
	m, err := h.movies.Get(ctx, rec.MovieID)
	if err != nil {
		return false
	}
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+strconv.FormatInt(m.ID, 10))
	ok(c, rec.Status, toMovieResponse(m))
	return true
}

// UpdateMovie godoc
// @ID          updateMovie
// @Summary     Update a movie
// @Description Partial update: only supplied fields change. predicted_sentiment and id in the body are ignored.
// @Tags        Movies
// @Accept      json
// @Produce     json
// @Param       id    path      int                          true  "Movie ID"  minimum(1)
// @Param       body  body      handlers.UpdateMovieRequest  true  "Fields to change"
// @Success     200   {object}  handlers.MovieResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad id or body"
// @Failure     404   {object}  handlers.ErrorResponse  "Movie not found"
// @Failure     409   {object}  handlers.ErrorResponse  "Another movie has the same title and director"
// @Router      /movies/{id} [put]
func (h *Handlers) UpdateMovie(c *gin.Context) {
	id, valid := movieID(c)
	if !valid {
		return
	}
	var req UpdateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindErrorMessage(err))
		return
	}
	m, err := h.movies.Update(c.Request.Context(), id, req.patch())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponse(m))
}

// DeleteMovie godoc
// @ID          deleteMovie
// @Summary     Delete a movie
// @Tags        Movies
// @Param       id   path      int  true  "Movie ID"  minimum(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Movie not found"
// @Router      /movies/{id} [delete]
func (h *Handlers) DeleteMovie(c *gin.Context) {
	id, valid := movieID(c)
	if !valid {
		return
	}
	if err := h.movies.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}

// moviesETag derives a weak validator from the row count and newest update.
func moviesETag(count int64, maxUpdatedAt *time.Time) string {
	var ts int64
	if maxUpdatedAt != nil {
		ts = maxUpdatedAt.UnixNano()
	}
	return fmt.Sprintf(`W/"movies:%d:%d"`, count, ts)
}

// etagMatches implements If-None-Match list and wildcard matching.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// catchAllParam returns a *name path parameter without gin's leading slash.
func catchAllParam(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}
