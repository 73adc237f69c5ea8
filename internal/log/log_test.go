package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "dealforge/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := applog.Writer()
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(old) })
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		out = append(out, m)
	}
	return out
}

func TestBackgroundEntries(t *testing.T) {
	buf := capture(t)
	applog.Error(nil, "cart.persist.fail", errors.New("disk full"), map[string]any{"key": "k"})
	applog.Audit(nil, "store.reset", nil)

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "cart.persist.fail", got[0]["action"])
	assert.Equal(t, "error", got[0]["level"])
	assert.Equal(t, "disk full", got[0]["err"])
	assert.Equal(t, map[string]any{"key": "k"}, got[0]["fields"])
	assert.NotContains(t, got[0], "ip")

	assert.Equal(t, map[string]any{"kind": "audit"}, got[1]["fields"])
}

func TestRequestEntriesCarryContext(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/x", func(c *fiber.Ctx) error {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.SendStatus(fiber.StatusBadRequest)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)

	got := lines(t, buf)
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, "warning", e["level"])
	assert.Equal(t, "GET", e["method"])
	assert.Equal(t, "/x", e["path"])
	assert.NotEmpty(t, e["req_id"])
	assert.NotEmpty(t, e["ts"])
}
