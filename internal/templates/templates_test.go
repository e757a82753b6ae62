package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
templates:
  - title: Grow revenue
    description: Expand into new markets
    category: growth
    priority: HIGH
    tags: [sales, growth]
    keyResults:
      - title: Reach ARR
        targetValue: 1000000
        unit: USD
        weight: 3
      - title: New logos
        targetValue: 40
  - title: Improve reliability
    keyResults:
      - title: Uptime
        targetValue: 99.9
        unit: "%"
`

func TestParse(t *testing.T) {
	list, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Grow revenue", list[0].Title)
	assert.Equal(t, []string{"sales", "growth"}, list[0].Tags)
	require.Len(t, list[0].KeyResults, 2)
	assert.Equal(t, 1000000.0, list[0].KeyResults[0].TargetValue)
	assert.Equal(t, 3, list[0].KeyResults[0].Weight)
	assert.Equal(t, "%", list[1].KeyResults[0].Unit)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"missing title":   "templates:\n  - keyResults:\n      - {title: a, targetValue: 1}\n",
		"no key results":  "templates:\n  - title: a\n",
		"zero target":     "templates:\n  - title: a\n    keyResults:\n      - {title: b, targetValue: 0}\n",
		"duplicate title": "templates:\n  - {title: a, keyResults: [{title: b, targetValue: 1}]}\n  - {title: a, keyResults: [{title: b, targetValue: 1}]}\n",
		"not yaml":        "templates: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	list, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedUpsertsByTitle(t *testing.T) {
	db := testutil.NewDB(t)
	list, err := Parse([]byte(sample))
	require.NoError(t, err)

	n, err := Seed(db, list)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list[1].Description = "Fewer incidents"
	_, err = Seed(db, list)
	require.NoError(t, err)

	var rows []models.ObjectiveTemplate
	require.NoError(t, db.Order("title ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "HIGH", rows[0].Priority)
	assert.Len(t, rows[0].KeyResults, 2)
	assert.Equal(t, "Fewer incidents", rows[1].Description)
	assert.Equal(t, "MEDIUM", rows[1].Priority)
}
