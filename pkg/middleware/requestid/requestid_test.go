package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, FromContext(c))
	})
	return r
}

func TestAssignsFreshID(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	echoed := w.Header().Get(Header)
	require.NotEmpty(t, echoed)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
	assert.Equal(t, echoed, w.Body.String())
}

func TestReusesCallerID(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(Header, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(Header))
	assert.Equal(t, "abc-123", w.Body.String())
}
