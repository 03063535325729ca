package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

const testCatalog = `
notifications:
  new_match:
    title: "New match found"
    message: "You matched on {{.jobTitle}}"
  application_received:
    title: "New application"
    message: "A candidate applied to {{.jobTitle}}"
`

func TestParseCatalogAndRender(t *testing.T) {
	t.Parallel()

	catalog, err := notify.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	assert.True(t, catalog.Has("new_match"))
	assert.False(t, catalog.Has("job_expired"))

	title, message, err := catalog.Render("new_match", map[string]any{"jobTitle": "Go Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "New match found", title)
	assert.Equal(t, "You matched on Go Engineer", message)
}

func TestRenderUnknownKind(t *testing.T) {
	t.Parallel()

	catalog, err := notify.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	_, _, err = catalog.Render("job_expired", nil)
	assert.ErrorIs(t, err, notify.ErrTemplateNotFound)
}

func TestParseCatalogInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := notify.ParseCatalog([]byte("notifications: [broken"))
	assert.ErrorIs(t, err, notify.ErrInvalidCatalog)
}

func TestParseCatalogInvalidTemplate(t *testing.T) {
	t.Parallel()

	_, err := notify.ParseCatalog([]byte(`
notifications:
  new_match:
    title: "{{.unclosed"
    message: "m"
`))
	assert.ErrorIs(t, err, notify.ErrInvalidCatalog)
}

func TestDeterministicID(t *testing.T) {
	t.Parallel()

	a := notify.DeterministicID("evt-1:u1")
	b := notify.DeterministicID("evt-1:u1")
	c := notify.DeterministicID("evt-1:u2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
