package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := Parse(ctxWithQuery(""))
		assert.Equal(t, DefaultPage, p.Page)
		assert.Equal(t, DefaultLimit, p.Limit)
		assert.Equal(t, 0, p.Offset)
	})

	t.Run("explicit values", func(t *testing.T) {
		p := Parse(ctxWithQuery("page=3&limit=10"))
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 10, p.Limit)
		assert.Equal(t, 20, p.Offset)
	})

	t.Run("limit is capped", func(t *testing.T) {
		p := Parse(ctxWithQuery("limit=5000"))
		assert.Equal(t, MaxLimit, p.Limit)
	})

	t.Run("garbage falls back to defaults", func(t *testing.T) {
		p := Parse(ctxWithQuery("page=-1&limit=abc"))
		assert.Equal(t, DefaultPage, p.Page)
		assert.Equal(t, DefaultLimit, p.Limit)
	})
}
