package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonathan/news-recommender/internal/recommend"
	"github.com/jonathan/news-recommender/internal/server"
	"github.com/jonathan/news-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtures writes an articles file and an interactions file for user 1 into a
// temp dir and returns their paths.
func writeFixtures(t *testing.T) (articlesPath, interactionsPath string) {
	t.Helper()
	now := time.Now().UTC()
	article := func(id int64, title string, category types.Category, bias types.PoliticalBias) types.Article {
		return types.Article{
			ID:             id,
			Title:          title,
			Content:        title + " story",
			Category:       category,
			PoliticalBias:  bias,
			SentimentScore: 0.1 * float64(id),
			PublishedAt:    now.Add(-time.Duration(id) * time.Hour),
		}
	}
	articles := []types.Article{
		article(1, "Quantum processor design breakthrough", types.CategoryTechnology, types.BiasNeutral),
		article(2, "Quantum processor design delayed", types.CategoryTechnology, types.BiasNeutral),
		article(3, "Election debate tonight", types.CategoryPolitics, types.BiasLeft),
		article(4, "Senate budget showdown", types.CategoryPolitics, types.BiasRight),
		article(5, "Marathon season opener", types.CategorySports, types.BiasNeutral),
	}
	interactions := []map[string]any{
		{"userId": 1, "articleId": 1, "interactionType": "like", "timestamp": now.Add(-time.Hour).Format(time.RFC3339)},
		{"userId": 1, "articleId": 5, "interactionType": "click", "timestamp": now.Add(-2 * time.Hour).Format(time.RFC3339)},
	}

	dir := t.TempDir()
	articlesPath = filepath.Join(dir, "articles.json")
	interactionsPath = filepath.Join(dir, "interactions.json")
	writeFile(t, articlesPath, articles)
	writeFile(t, interactionsPath, interactions)
	return articlesPath, interactionsPath
}

func writeFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestBuildModelCommand(t *testing.T) {
	articles, _ := writeFixtures(t)

	out, err := execute(t, "build-model", "--articles", articles)
	require.NoError(t, err)

	var report ModelReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Documents)
	assert.Equal(t, len(report.Vocabulary), report.VocabularySize)
	assert.Contains(t, report.Vocabulary, "quantum")
	assert.Len(t, report.Fingerprint, 16)
}

func TestBuildModelCommand_OutputFile(t *testing.T) {
	articles, _ := writeFixtures(t)
	outPath := filepath.Join(t.TempDir(), "nested", "model.json")

	out, err := execute(t, "build-model", "-a", articles, "-o", outPath, "--verbose")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var report ModelReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 5, report.Documents)
}

func TestBuildModelCommand_RequiresInput(t *testing.T) {
	_, err := execute(t, "build-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--articles is required")
}

func TestBuildModelCommand_InvalidArticles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	writeFile(t, path, []map[string]any{{"id": 1, "title": "Weather", "category": "weather", "politicalBias": "neutral", "publishedAt": "2026-10-01T00:00:00Z"}})

	_, err := execute(t, "build-model", "--articles", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")
}

func TestRecommendCommand_ColdStart(t *testing.T) {
	articles, _ := writeFixtures(t)

	out, err := execute(t, "recommend", "--articles", articles, "--user-id", "9", "--limit", "3")
	require.NoError(t, err)

	var resp server.RecommendationsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(9), resp.UserID)
	assert.Equal(t, 0, resp.TotalInteractions)
	require.Len(t, resp.Recommendations, 3)
	for _, rec := range resp.Recommendations {
		assert.Equal(t, recommend.ReasonTrending, rec.Reason)
	}
}

func TestRecommendCommand_Personalized(t *testing.T) {
	articles, interactions := writeFixtures(t)

	out, err := execute(t, "recommend", "-a", articles, "-i", interactions, "-u", "1", "--exclude-viewed")
	require.NoError(t, err)

	var resp server.RecommendationsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.TotalInteractions)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, int64(2), resp.Recommendations[0].Article.ID)
	for _, rec := range resp.Recommendations {
		assert.NotContains(t, []int64{1, 5}, rec.Article.ID)
	}
}

func TestRecommendCommand_Refresh(t *testing.T) {
	articles, interactions := writeFixtures(t)

	out, err := execute(t, "recommend", "-a", articles, "-i", interactions, "-u", "1", "--refresh")
	require.NoError(t, err)

	var result recommend.RefreshResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.TotalLikedArticles)
	assert.Equal(t, []string{"technology"}, result.BasedOnCategories)
	assert.Equal(t, []string{"neutral"}, result.BasedOnBiasTypes)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, int64(2), result.Recommendations[0].Article.ID)

	out, err = execute(t, "recommend", "-a", articles, "-u", "1", "--refresh")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, recommend.NoLikesMessage, result.Message)
}

func TestRecommendCommand_Similar(t *testing.T) {
	articles, _ := writeFixtures(t)

	out, err := execute(t, "recommend", "-a", articles, "--similar-to", "1", "-n", "2")
	require.NoError(t, err)

	var report SimilarReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(1), report.ArticleID)
	require.Len(t, report.Recommendations, 2)
	assert.Equal(t, int64(2), report.Recommendations[0].Article.ID)
}

func TestRecommendCommand_FlagErrors(t *testing.T) {
	articles, _ := writeFixtures(t)

	_, err := execute(t, "recommend", "-a", articles)
	assert.ErrorContains(t, err, "--user-id is required")

	_, err = execute(t, "recommend", "-a", articles, "-u", "1", "--refresh", "--similar-to", "2")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = execute(t, "recommend", "-a", articles, "-u", "1", "--limit=-1")
	assert.ErrorIs(t, err, recommend.ErrInvalidLimit)
}

func TestExportPreferencesCommand(t *testing.T) {
	articles, interactions := writeFixtures(t)

	out, err := execute(t, "export-preferences", "-a", articles, "-i", interactions, "-u", "1")
	require.NoError(t, err)

	var prefs types.UserPreferences
	require.NoError(t, json.Unmarshal([]byte(out), &prefs))
	assert.Equal(t, int64(1), prefs.UserID)
	assert.Equal(t, []string{"technology", "sports"}, prefs.PreferredCategories)
	assert.Equal(t, []string{"neutral"}, prefs.PreferredBiasTypes)
	assert.NotEmpty(t, prefs.SerializedProfile)
}

func TestExportPreferencesCommand_RequiresUser(t *testing.T) {
	articles, _ := writeFixtures(t)

	_, err := execute(t, "export-preferences", "-a", articles)
	assert.ErrorContains(t, err, "user-id")
}

func TestValidateCommand(t *testing.T) {
	articles, interactions := writeFixtures(t)
	schema := filepath.Join("..", "..", "schemas", "articles.schema.json")

	out, err := execute(t, "validate", "--schema", schema, "--json", articles)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed")

	out, err = execute(t, "validate", "--schema", schema, "--json", interactions)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
}
