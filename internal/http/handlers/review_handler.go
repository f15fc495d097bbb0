// Review HTTP handlers.
//
//   - POST /movies/{id}/review     (attach review text, no analysis)
//   - POST /movies/review_analyze  (batch sentiment analysis)
package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// HeaderAnalysisFailed lists the ids whose analysis failed in a batch run.
const HeaderAnalysisFailed = "X-Analysis-Failed"

var errReviewBody = errors.New("review must be a JSON string or plain text")

// AttachReview godoc
// @ID          attachReview
// @Summary     Attach a review to a movie
// @Description Stores the review text without analyzing it. The body is either a JSON string or raw text.
// @Description Any previous sentiment is no longer reported until the next analysis.
// @Tags        Reviews
// @Accept      json
// @Accept      plain
// @Produce     json
// @Param       id    path      int     true  "Movie ID"  minimum(1)
// @Param       body  body      string  true  "Review text"  example("Great acting and story!")
// @Success     200   {object}  handlers.MovieResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad id or empty review"
// @Failure     404   {object}  handlers.ErrorResponse  "Movie not found"
// @Router      /movies/{id}/review [post]
func (h *Handlers) AttachReview(c *gin.Context) {
	id, valid := movieID(c)
	if !valid {
		return
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "review body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return
	}
	text, err := parseReviewBody(c.ContentType(), raw)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	m, err := h.movies.AttachReview(c.Request.Context(), id, text)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, toMovieResponse(m))
}

// parseReviewBody accepts a JSON string literal or raw UTF-8 text. A JSON
// content type requires a string literal; otherwise a body starting with a
// quote is decoded as one and anything else is taken verbatim.
func parseReviewBody(contentType string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errReviewBody
	}
	trimmed := bytes.TrimSpace(raw)
	mediaType, _, _ := mime.ParseMediaType(contentType)
	isJSON := mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")

	if isJSON || (len(trimmed) > 0 && trimmed[0] == '"') {
		if len(trimmed) == 0 {
			return "", nil
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			if isJSON {
				return "", errReviewBody
			}
			return string(raw), nil
		}
		return s, nil
	}
	return string(raw), nil
}

// AnalyzeReviews godoc
// @ID          analyzeReviews
// @Summary     Analyze all reviews
// @Description Runs sentiment analysis over every movie with a review and stores the distributions.
// @Description Records whose analysis failed are skipped and listed in the X-Analysis-Failed header.
// @Tags        Reviews
// @Produce     json
// @Success     200  {array}   handlers.MovieResponse
// @Header      200  {string}  X-Analysis-Failed  "Comma-separated ids that could not be analyzed"
// @Failure     404  {object}  handlers.ErrorResponse  "No reviews to analyze"
// @Failure     503  {object}  handlers.ErrorResponse  "Sentiment model unavailable"
// @Router      /movies/review_analyze [post]
func (h *Handlers) AnalyzeReviews(c *gin.Context) {
	report, err := h.reviews.AnalyzeAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if ids := report.FailedIDs(); len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		c.Header(HeaderAnalysisFailed, strings.Join(parts, ","))
	}
	ok(c, http.StatusOK, toMovieResponses(report.Analyzed))
}
