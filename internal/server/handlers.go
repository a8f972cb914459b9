package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/todokit/internal/todo"
)

// codeInternal marks errors that are not service errors.
const codeInternal = "INTERNAL"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleList(c *gin.Context) {
	filter, err := todo.ParseFilter(c.Query("filter"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	items := s.todos.List(filter, c.Query("tag"))
	if items == nil {
		items = []*todo.Todo{}
	}
	c.JSON(http.StatusOK, ListResponse{Todos: items, Stats: s.todos.Stats()})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request: " + err.Error(),
			Code:  string(todo.ErrCodeInvalid),
		})
		return
	}

	created, err := s.todos.Create(req.Text, req.Tags...)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGet(c *gin.Context) {
	t, err := s.todos.Resolve(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// handleUpdate applies the fields present in the body in a fixed order:
// text, then tags, then completion. An empty text removes the todo and the
// reply is 204.
func (s *Server) handleUpdate(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request: " + err.Error(),
			Code:  string(todo.ErrCodeInvalid),
		})
		return
	}
	if req.Text == nil && req.Completed == nil && req.Tags == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "nothing to update: set text, completed or tags",
			Code:  string(todo.ErrCodeInvalid),
		})
		return
	}

	cur, err := s.todos.Resolve(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	if req.Text != nil {
		cur, err = s.todos.Edit(cur.ID, *req.Text)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if cur == nil {
			c.Status(http.StatusNoContent)
			return
		}
	}
	if req.Tags != nil {
		if cur, err = s.todos.Retag(cur.ID, *req.Tags...); err != nil {
			s.writeError(c, err)
			return
		}
	}
	if req.Completed != nil {
		if cur, err = s.todos.SetCompleted(cur.ID, *req.Completed); err != nil {
			s.writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, cur)
}

func (s *Server) handleToggle(c *gin.Context) {
	cur, err := s.todos.Resolve(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	t, err := s.todos.Toggle(cur.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleRemove(c *gin.Context) {
	cur, err := s.todos.Resolve(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.todos.Remove(cur.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleToggleAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.todos.ToggleAll())
}

func (s *Server) handleClearCompleted(c *gin.Context) {
	removed := s.todos.ClearCompleted()
	c.JSON(http.StatusOK, ClearResponse{Removed: removed, Stats: s.todos.Stats()})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.todos.Stats())
}

// writeError maps service error codes to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := todo.CodeOf(err)
	switch code {
	case todo.ErrCodeNotFound:
		status = http.StatusNotFound
	case todo.ErrCodeAmbiguous:
		status = http.StatusConflict
	case todo.ErrCodeInvalid:
		status = http.StatusBadRequest
	default:
		code = codeInternal
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: string(code)})
}
