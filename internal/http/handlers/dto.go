package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-movie-catalog/internal/domain"
	"github.com/tbourn/go-movie-catalog/internal/services"
)

// CreateMovieRequest is the JSON payload for POST /movies.
type CreateMovieRequest struct {
	Title    string `json:"title"    binding:"required" example:"Dune"`
	Director string `json:"director" binding:"required" example:"Denis Villeneuve"`
	Category string `json:"category" binding:"required" example:"Sci-Fi"`
}

// UpdateMovieRequest is the JSON payload for PUT /movies/{id}. Absent or null
// fields are left unchanged; id and predicted_sentiment are ignored.
type UpdateMovieRequest struct {
	Title    *string  `json:"title,omitempty"     example:"Dune: Part Two"`
	Director *string  `json:"director,omitempty"  example:"Denis Villeneuve"`
	Category *string  `json:"category,omitempty"  example:"Sci-Fi"`
	Rating   *float64 `json:"rating,omitempty"    example:"4.5"`
	ImageURL *string  `json:"image_url,omitempty" example:"https://image.example/dune.jpg"`
	Review   *string  `json:"review,omitempty"    example:"Great acting and story!"`
}

func (r UpdateMovieRequest) patch() services.MoviePatch {
	return services.MoviePatch{
		Title:    r.Title,
		Director: r.Director,
		Category: r.Category,
		Rating:   r.Rating,
		ImageURL: r.ImageURL,
		Review:   r.Review,
	}
}

// SentimentResponse is the two-class distribution of a review.
type SentimentResponse struct {
	Positive float64 `json:"positive" example:"0.95"`
	Negative float64 `json:"negative" example:"0.05"`
}

// MovieResponse is the public representation of a movie.
// PredictedSentiment is present only when it describes the current review.
type MovieResponse struct {
	ID                 int64              `json:"id" example:"1"`
	Title              string             `json:"title" example:"Dune"`
	Director           string             `json:"director" example:"Denis Villeneuve"`
	Category           string             `json:"category" example:"Sci-Fi"`
	Rating             *float64           `json:"rating,omitempty" example:"4.5"`
	ImageURL           *string            `json:"image_url,omitempty" example:"https://image.example/dune.jpg"`
	Review             *string            `json:"review,omitempty" example:"Great acting and story!"`
	PredictedSentiment *SentimentResponse `json:"predicted_sentiment,omitempty"`
}

// WelcomeResponse is the body of GET /.
type WelcomeResponse struct {
	Messages string `json:"messages" example:"HI! This website is for Movie search and estimate movie rates by reviews"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Model  string `json:"model" example:"ready"`
	DB     string `json:"db" example:"connected"`
}

func toMovieResponse(m *domain.Movie) MovieResponse {
	out := MovieResponse{
		ID:       m.ID,
		Title:    m.Title,
		Director: m.Director,
		Category: m.Category,
		Rating:   m.Rating,
		ImageURL: m.ImageURL,
		Review:   m.Review,
	}
	if s := m.CurrentSentiment(); s != nil {
		out.PredictedSentiment = &SentimentResponse{Positive: s.Positive(), Negative: s.Negative()}
	}
	return out
}

func toMovieResponses(items []domain.Movie) []MovieResponse {
	out := make([]MovieResponse, 0, len(items))
	for i := range items {
		out = append(out, toMovieResponse(&items[i]))
	}
	return out
}

// bindErrorMessage turns a binding failure into a client-facing message.
// Validator errors name the offending JSON fields; decoding errors are
// reported generically.
func bindErrorMessage(err error) string {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		parts := make([]string, 0, len(ves))
		for _, fe := range ves {
			name := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				parts = append(parts, name+" is required")
			default:
				parts = append(parts, fmt.Sprintf("%s failed %s", name, fe.Tag()))
			}
		}
		return strings.Join(parts, "; ")
	}
	if errors.Is(err, io.EOF) {
		return "request body is required"
	}
	return "invalid JSON body"
}
