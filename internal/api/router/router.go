package router

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"github.com/imageworks/image-tasks/internal/api/handlers/task"
	"github.com/imageworks/image-tasks/internal/middleware"
)

func Setup(h *task.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestID())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	r.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/tasks", h.Create)     // registering a processing task
	api.GET("/tasks/:taskId", h.Get) // polling task status/results

	return r
}
