package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/birlikkoshan/todo-serverless/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSiteRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newSiteRouter(web.FS(), web.ClientConfig{APIURL: "https://api.example.com/api", APIKey: "k1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"https://api.example.com/api"`)
	assert.Contains(t, w.Body.String(), `"apiKey":"k1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Todo List</title>")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
