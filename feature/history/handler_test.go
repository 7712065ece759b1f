package history

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandlers(t *testing.T) {
	store := setupStore(t)
	app := fiber.New()
	NewHandler(store, zap.NewNop()).RegisterRoutes(app)

	t.Run("Latest before any run", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/runs/latest", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Empty list", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/runs", nil))
		require.NoError(t, err)
		var runs []SyncRun
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
		assert.NotNil(t, runs)
		assert.Empty(t, runs)
	})

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Record(context.Background(), report(id, 0), nil)
		require.NoError(t, err)
	}

	t.Run("List with limit", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/runs?limit=2", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var runs []SyncRun
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
		assert.Len(t, runs, 2)
		assert.Equal(t, "c", runs[0].RunID)
	})

	t.Run("Latest", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/runs/latest", nil))
		require.NoError(t, err)
		var run SyncRun
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		assert.Equal(t, "c", run.RunID)
	})
}

func TestFeature_AfterRun(t *testing.T) {
	store := setupStore(t)
	f := &Feature{store: store, logger: zap.NewNop()}

	f.AfterRun(context.Background(), report("hooked", 0), nil)

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hooked", latest.RunID)

	// A duplicate run id fails the insert but never panics.
	f.AfterRun(context.Background(), report("hooked", 0), nil)
}

func TestFeature_DisabledWithoutDB(t *testing.T) {
	f := NewFeature(nil, zap.NewNop())
	assert.False(t, f.IsEnabled())
	assert.Nil(t, f.Store())
}
