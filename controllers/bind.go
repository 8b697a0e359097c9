// controllers/bind.go
package controllers

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// decodeJSON fills obj from the request body and rejects unknown fields.
// Field rules are checked by the gateway after the caller's role.
func decodeJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// decodeQuery fills obj from the query string using its form tags.
func decodeQuery(c *gin.Context, obj interface{}) error {
	return binding.MapFormWithTag(obj, c.Request.URL.Query(), "form")
}
