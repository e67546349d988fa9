package handlers

import (
	"encoding/json"
	"net/http"

	"apiary-api-server/internal/graph"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
)

type GraphQLHandler struct {
	Schema graphql.Schema
}

// Serve answers POST {query, variables, operationName} and GET ?query=&variables=.
// Execution errors are returned in the body with status 200.
func (h *GraphQLHandler) Serve(c *gin.Context) {
	var req graph.Request
	switch c.Request.Method {
	case http.MethodGet:
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if vars := c.Query("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "variables must be a JSON object"})
				return
			}
		}
	default:
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid GraphQL request body", "details": err.Error()})
			return
		}
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result := graph.Execute(c.Request.Context(), h.Schema, req)
	c.JSON(http.StatusOK, result)
}
