// Package types provides type definitions for the articles, interaction events and
// recommendation outputs shared across the news recommender.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Category is the fixed topical classification assigned to every article.
type Category string

// Known article categories.
const (
	CategoryPolitics   Category = "politics"
	CategoryTechnology Category = "technology"
	CategoryHealth     Category = "health"
	CategoryFinance    Category = "finance"
	CategorySports     Category = "sports"
	CategoryGeneral    Category = "general"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryPolitics,
	CategoryTechnology,
	CategoryHealth,
	CategoryFinance,
	CategorySports,
	CategoryGeneral,
}

// PoliticalBias is the lean detected by content analysis.
type PoliticalBias string

// Known bias labels.
const (
	BiasLeft    PoliticalBias = "left"
	BiasRight   PoliticalBias = "right"
	BiasNeutral PoliticalBias = "neutral"
)

// Article is a news article as seen by the recommender. The recommender never mutates it.
type Article struct {
	ID             int64         `json:"id" validate:"gt=0"`
	Title          string        `json:"title" validate:"required"`
	Content        string        `json:"content"`
	Summary        string        `json:"summary,omitempty"`
	URL            string        `json:"url,omitempty" validate:"omitempty,url"`
	Source         string        `json:"source,omitempty"`
	Category       Category      `json:"category" validate:"required,oneof=politics technology health finance sports general"`
	PoliticalBias  PoliticalBias `json:"politicalBias" validate:"required,oneof=left right neutral"`
	SentimentScore float64       `json:"sentimentScore" validate:"gte=-1,lte=1"`
	PublishedAt    time.Time     `json:"publishedAt" validate:"required"`
}

// Text returns the blob fed to the TF-IDF builder: title, content and summary.
func (a *Article) Text() string {
	return a.Title + " " + a.Content + " " + a.Summary
}

// Validate checks the article against its field constraints.
func (a *Article) Validate() error {
	return validate.Struct(a)
}
