// Package domain defines the persistence models of the movie catalog. These
// types are mapped with GORM and shared by the repository, service and HTTP
// layers.
package domain

import "time"

// Movie is the single persistent entity of the catalog.
//
// Fields:
//   - ID: storage-assigned integer primary key, immutable after insert.
//   - Title / Director: required; the pair is unique (ux_movies_title_director).
//   - Category: required genre label.
//   - Rating, ImageURL, Review: optional (NULL when absent).
//   - SentimentRaw: serialized sentiment distribution stored in the
//     "sentiment" column; read it through Sentiment().
//   - ReviewUpdatedAt / AnalyzedAt: used to decide whether the stored
//     sentiment still describes the current review.
type Movie struct {
	ID       int64    `json:"id"        gorm:"primaryKey;autoIncrement"`
	Title    string   `json:"title"     gorm:"type:varchar(255);not null;uniqueIndex:ux_movies_title_director,priority:1"`
	Director string   `json:"director"  gorm:"type:varchar(255);not null;uniqueIndex:ux_movies_title_director,priority:2;index:idx_movies_director"`
	Category string   `json:"category"  gorm:"type:varchar(100);not null;index:idx_movies_category"`
	Rating   *float64 `json:"rating,omitempty"`
	ImageURL *string  `json:"image_url,omitempty" gorm:"column:image_url;type:text"`
	Review   *string  `json:"review,omitempty"    gorm:"type:text"`

	SentimentRaw    *string    `json:"-" gorm:"column:sentiment;type:text"`
	ReviewUpdatedAt *time.Time `json:"-"`
	AnalyzedAt      *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-" gorm:"index:idx_movies_updated"`
}

// TableName returns the database table name for Movie.
func (Movie) TableName() string { return "movies" }

// Sentiment decodes the stored distribution. Malformed or empty text yields
// nil rather than an error.
func (m *Movie) Sentiment() Sentiment {
	if m.SentimentRaw == nil {
		return nil
	}
	return ParseSentiment(*m.SentimentRaw)
}

// SetSentiment stores s in serialized form and stamps AnalyzedAt. A nil or
// empty distribution clears the column.
func (m *Movie) SetSentiment(s Sentiment, at time.Time) {
	m.SentimentRaw = s.Encode()
	if m.SentimentRaw == nil {
		m.AnalyzedAt = nil
		return
	}
	at = at.UTC()
	m.AnalyzedAt = &at
}

// SetReview replaces the review text and stamps ReviewUpdatedAt.
func (m *Movie) SetReview(text string, at time.Time) {
	m.Review = &text
	at = at.UTC()
	m.ReviewUpdatedAt = &at
}

// CurrentSentiment returns the stored distribution only when it was computed
// after the latest review change; otherwise nil.
func (m *Movie) CurrentSentiment() Sentiment {
	s := m.Sentiment()
	if s == nil {
		return nil
	}
	if m.ReviewUpdatedAt != nil {
		if m.AnalyzedAt == nil || m.AnalyzedAt.Before(*m.ReviewUpdatedAt) {
			return nil
		}
	}
	return s
}

// HasReview reports whether a non-empty review is attached.
func (m *Movie) HasReview() bool {
	return m.Review != nil && *m.Review != ""
}
