package devapi

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) list(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		coll := s.colls[name]
		records := make([]map[string]any, len(coll.records))
		for i, r := range coll.records {
			records[i] = maps.Clone(r)
		}
		wrap := coll.wrap
		s.mu.Unlock()

		if wrap != "" {
			c.JSON(http.StatusOK, gin.H{"count": len(records), wrap: records})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

type batchDeleteBody struct {
	ItemIDs []any `json:"item_ids" binding:"required"`
}

func (s *Server) batchDelete(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		coll := s.colls[name]

		if coll.needsCSRF && c.GetHeader("X-CSRFToken") != s.csrf {
			c.JSON(http.StatusForbidden, gin.H{"detail": "CSRF token missing or incorrect."})
			return
		}
		var body batchDeleteBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		ids := make(map[string]bool, len(body.ItemIDs))
		for _, id := range body.ItemIDs {
			ids[fmt.Sprint(id)] = true
		}
		before := len(coll.records)
		coll.records = slices.DeleteFunc(coll.records, func(r map[string]any) bool {
			return ids[fmt.Sprint(r[coll.idField])]
		})
		c.JSON(http.StatusOK, gin.H{"deleted": before - len(coll.records)})
	}
}

func (s *Server) update(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		coll := s.colls[name]
		id := c.Param("id")
		i := slices.IndexFunc(coll.records, func(r map[string]any) bool {
			return fmt.Sprint(r[coll.idField]) == id
		})
		if i < 0 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		delete(fields, coll.idField)
		maps.Copy(coll.records[i], fields)
		c.JSON(http.StatusOK, maps.Clone(coll.records[i]))
	}
}

func (s *Server) create(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec map[string]any
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		coll := s.colls[name]
		rec[coll.idField] = coll.nextID
		coll.nextID++
		coll.records = append(coll.records, rec)
		c.JSON(http.StatusCreated, maps.Clone(rec))
	}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
