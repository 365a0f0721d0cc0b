package middleware

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/cstockton/go-conv"
	"github.com/labstack/echo/v4"
)

// BindAndValidate binds path params, query, body and `header` tagged fields
// into req, then validates it. Header and validation failures are 400s.
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := bindHeaders(c.Request().Header, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// bindHeaders fills the fields of the struct dst points to from the headers
// named by their `header` tag. Absent headers leave the field as is.
func bindHeaders(h http.Header, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind headers: want pointer to struct, got %T", dst)
	}
	v = v.Elem()
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name := f.Tag.Get("header")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		raw := h.Get(name)
		if raw == "" {
			continue
		}
		if err := conv.Infer(v.Field(i), raw); err != nil {
			return fmt.Errorf("header %s: cannot parse %q as %s", name, raw, f.Type)
		}
	}
	return nil
}
