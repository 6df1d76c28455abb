package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mnemoapp/mnemo/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	dataDir := setupDataDir(t)

	mustRun(t, "", "deck", "create", "Spanish")
	mustRun(t, "", "add", "Spanish", "hola", "hello")
	mustRun(t, "\ng\n", "study", "Spanish")

	out := mustRun(t, "", "export", "Spanish")
	assert.Contains(t, out, `Exported "Spanish" to`)

	archivePath := filepath.Join(dataDir, "archives", "Spanish.fcz")
	_, err := os.Stat(archivePath)
	require.NoError(t, err, "export should write the managed archive")

	t.Run("listing", func(t *testing.T) {
		out := mustRun(t, "", "import")
		assert.Contains(t, out, "Available archives:")
		assert.Contains(t, out, "Spanish")
	})

	t.Run("import by name restores the deck", func(t *testing.T) {
		mustRun(t, "y\n", "deck", "delete", "Spanish")

		out := mustRun(t, "", "import", "Spanish")
		assert.Contains(t, out, `Imported deck "Spanish" with 1 card`)

		// The study counters came back with the cards.
		out = mustRun(t, "", "stats", "Spanish")
		assert.Contains(t, out, "1 total, 1 studied")
	})

	t.Run("name collision", func(t *testing.T) {
		_, err := run(t, "", "import", archivePath)
		assert.ErrorIs(t, err, service.ErrDeckNameExists)
	})

	t.Run("missing archive", func(t *testing.T) {
		_, err := run(t, "", "import", filepath.Join(dataDir, "nothing.fcz"))
		require.Error(t, err)
	})
}

func TestExportJSON(t *testing.T) {
	setupDataDir(t)

	mustRun(t, "", "deck", "create", "Spanish")
	mustRun(t, "", "add", "Spanish", "hola", "hello")

	jsonPath := filepath.Join(t.TempDir(), "spanish.json")
	out := mustRun(t, "", "export", "Spanish", "--json", jsonPath)
	assert.Contains(t, out, jsonPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestImportEmptyListing(t *testing.T) {
	setupDataDir(t)

	out := mustRun(t, "", "import")
	assert.Contains(t, out, "No archives yet.")
}
