package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) *Params {
	t.Helper()
	var got *Params
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetParams(c)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
	require.NoError(t, err)
	return got
}

func TestGetParams(t *testing.T) {
	assert.Equal(t, &Params{}, paramsFor(t, ""))
	assert.Equal(t, &Params{}, paramsFor(t, "?page=3"))
	assert.Equal(t, &Params{Page: 1, Limit: 10}, paramsFor(t, "?limit=10"))
	assert.Equal(t, &Params{Page: 3, Limit: 10, Offset: 20}, paramsFor(t, "?limit=10&page=3"))
	assert.Equal(t, &Params{Page: 1, Limit: MaxLimit}, paramsFor(t, "?limit=5000&page=0"))
}
