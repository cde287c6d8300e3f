package types

import "time"

// Recommendation is one ranked article with its score and a human-readable reason.
type Recommendation struct {
	Article Article `json:"article"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// PreferenceSummary is the persistable digest of a user profile.
type PreferenceSummary struct {
	PreferredCategories []string `json:"preferredCategories"`
	PreferredBiasTypes  []string `json:"preferredBiasTypes"`
	SerializedProfile   string   `json:"serializedProfile"`
}

// UserPreferences is a stored PreferenceSummary for one user.
type UserPreferences struct {
	UserID int64 `json:"userId"`
	PreferenceSummary
	LastUpdated time.Time `json:"lastUpdated"`
}
