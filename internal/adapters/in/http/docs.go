package http

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// SwaggerInfo is the document served under /swagger/doc.json.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	BasePath:         "/api/v1",
	Title:            "Last-mile delivery API",
	InfoInstanceName: swag.Name,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var registerOnce sync.Once

var swaggerHandler = echoSwagger.WrapHandler

// registerDocs publishes doc to the swag registry read by echo-swagger.
// swag panics on double registration, so only the first call registers.
func registerDocs(doc *openapi3.T) error {
	body, err := doc.MarshalJSON()
	if err != nil {
		return err
	}

	registerOnce.Do(func() {
		SwaggerInfo.SwaggerTemplate = string(body)
		swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
	})
	return nil
}
