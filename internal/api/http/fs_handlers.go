package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/shared/paths"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
	"github.com/gmlportal/desktop/backend/internal/shared/utils"
)

// ListDirectory lists a directory's entries with their kind and size
func (h *Handlers) ListDirectory(c *gin.Context) {
	p, ok := queryPath(c)
	if !ok {
		return
	}
	if !h.fs.IsDirectory(p) {
		h.recordFS("list", false)
		notFound(c, "directory")
		return
	}

	names := h.fs.ListDirectory(p)
	entries := make([]vfs.NodeInfo, 0, len(names))
	for _, name := range names {
		if info, found := h.fs.Stat(paths.Join(p, name)); found {
			entries = append(entries, info)
		}
	}
	h.recordFS("list", true)
	c.JSON(http.StatusOK, gin.H{
		"path":    p,
		"entries": entries,
	})
}

// ReadFile returns a file's content
func (h *Handlers) ReadFile(c *gin.Context) {
	p, ok := queryPath(c)
	if !ok {
		return
	}
	content, found := h.fs.ReadFile(p)
	h.recordFS("read", found)
	if !found {
		notFound(c, "file")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":    p,
		"content": content,
	})
}

// WriteFile creates or overwrites a file. Writing under a missing
// directory or over a directory reports success false.
func (h *Handlers) WriteFile(c *gin.Context) {
	var req types.FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePath(req.Path, "path", true); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateContent(req.Content); err != nil {
		badRequest(c, err)
		return
	}

	p := vfs.ResolvePath(req.Path, req.Cwd)
	ok := h.fs.WriteFile(p, req.Content)
	h.recordFS("write", ok)
	c.JSON(http.StatusOK, gin.H{
		"success": ok,
		"path":    p,
	})
}

// DeleteFile removes a file
func (h *Handlers) DeleteFile(c *gin.Context) {
	p, ok := queryPath(c)
	if !ok {
		return
	}
	deleted := h.fs.DeleteFile(p)
	h.recordFS("delete", deleted)
	c.JSON(http.StatusOK, gin.H{
		"success": deleted,
		"path":    p,
	})
}

type createDirRequest struct {
	types.PathRequest
	Parents bool `json:"parents"`
}

// CreateDirectory creates a directory, and its parents when asked
func (h *Handlers) CreateDirectory(c *gin.Context) {
	var req createDirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePath(req.Path, "path", true); err != nil {
		badRequest(c, err)
		return
	}

	p := vfs.ResolvePath(req.Path, req.Cwd)
	var ok bool
	if req.Parents {
		ok = h.fs.CreateDirectoryAll(p)
	} else {
		ok = h.fs.CreateDirectory(p)
	}
	h.recordFS("mkdir", ok)
	c.JSON(http.StatusOK, gin.H{
		"success": ok,
		"path":    p,
	})
}

// RemoveDirectory removes a directory tree
func (h *Handlers) RemoveDirectory(c *gin.Context) {
	p, ok := queryPath(c)
	if !ok {
		return
	}
	removed := h.fs.RemoveDirectoryTree(p)
	h.recordFS("rmtree", removed)
	c.JSON(http.StatusOK, gin.H{
		"success": removed,
		"path":    p,
	})
}

// Glob matches node paths against a doublestar pattern
func (h *Handlers) Glob(c *gin.Context) {
	pattern := c.Query("pattern")
	if err := utils.ValidatePath(pattern, "pattern", true); err != nil {
		badRequest(c, err)
		return
	}
	matches, err := h.fs.Glob(pattern)
	if err != nil {
		badRequest(c, err)
		return
	}
	if matches == nil {
		matches = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"pattern": pattern,
		"matches": matches,
	})
}

// ResetFS restores the starter tree
func (h *Handlers) ResetFS(c *gin.Context) {
	h.fs.Reset()
	h.recordFS("reset", true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) recordFS(op string, ok bool) {
	if h.metrics != nil {
		h.metrics.RecordFSOperation(op, ok)
	}
}

// queryPath resolves the path and cwd query parameters
func queryPath(c *gin.Context) (string, bool) {
	raw := c.DefaultQuery("path", "~")
	if err := utils.ValidatePath(raw, "path", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	cwd := c.Query("cwd")
	if err := utils.ValidatePath(cwd, "cwd", false); err != nil {
		badRequest(c, err)
		return "", false
	}
	return vfs.ResolvePath(raw, cwd), true
}
