package shopserver

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// parseIDParam binds a simple-style path parameter and answers 400 on failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		respondBadRequest(c, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return 0, false
	}
	if id <= 0 {
		respondBadRequest(c, fmt.Errorf("parameter %s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

// parseBoolQuery binds an optional form-style query flag.
func parseBoolQuery(c *gin.Context, name string) (bool, bool) {
	var value bool
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &value); err != nil {
		respondBadRequest(c, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return false, false
	}
	return value, true
}
