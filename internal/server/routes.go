package server

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the todo API with the router group.
//
// Endpoints:
//
//	GET    /todos?filter=&tag=      - List todos
//	POST   /todos                   - Create a todo
//	GET    /todos/:id               - Get a todo (id or unique prefix)
//	PATCH  /todos/:id               - Update text, completion or tags
//	DELETE /todos/:id               - Remove a todo
//	POST   /todos/:id/toggle        - Flip completion
//	POST   /todos/toggle-all        - Complete all, or reopen all if all are done
//	POST   /todos/clear-completed   - Remove completed todos
//	GET    /stats                   - Counters
//	GET    /feed                    - Websocket snapshot feed
func RegisterRoutes(rg *gin.RouterGroup, s *Server) {
	todos := rg.Group("/todos")
	{
		todos.GET("", s.handleList)
		todos.POST("", s.handleCreate)
		todos.POST("/toggle-all", s.handleToggleAll)
		todos.POST("/clear-completed", s.handleClearCompleted)
		todos.GET("/:id", s.handleGet)
		todos.PATCH("/:id", s.handleUpdate)
		todos.DELETE("/:id", s.handleRemove)
		todos.POST("/:id/toggle", s.handleToggle)
	}

	rg.GET("/stats", s.handleStats)
	rg.GET("/feed", s.handleFeed)
}
