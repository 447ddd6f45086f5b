package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// identity is the caller as established by the Auth middleware.
type identity struct {
	UserID string
	Role   domain.Role
}

// ctxIdentity extracts the claims injected by the Auth middleware. A missing
// subject means the middleware did not run or the token is unusable.
func ctxIdentity(c echo.Context) (identity, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity{UserID: userID, Role: domain.Role(role)}, nil
}

// jsonFieldName makes validator report fields by their JSON names.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
