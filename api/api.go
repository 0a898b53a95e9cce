// Package api embeds the OpenAPI document of the HTTP interface.
package api

import (
	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Load parses and validates the embedded document.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, err
	}

	if err = doc.Validate(loader.Context); err != nil {
		return nil, err
	}

	return doc, nil
}
