package openapi

import (
	"fmt"
	"strings"

	prefs "github.com/goliatone/go-prefs"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator describing the settings document as an
// OpenAPI 3 component served by a GET and PUT operation.
func NewGenerator(opts ...GeneratorOption) prefs.SchemaGenerator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return generator{config: cfg}
}

// Option returns a prefs.Option that wires the OpenAPI schema generator.
func Option(opts ...GeneratorOption) prefs.Option {
	return prefs.WithSchemaGenerator(NewGenerator(opts...))
}

func (g generator) Generate(fields []prefs.FieldDescriptor) (prefs.SchemaDocument, error) {
	properties := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			return prefs.SchemaDocument{}, fmt.Errorf("openapi: field name must not be empty")
		}
		schema, err := propertySchema(field)
		if err != nil {
			return prefs.SchemaDocument{}, err
		}
		properties[field.Name] = schema
	}

	cfg := g.config
	ref := "#/components/schemas/" + cfg.component
	content := map[string]any{
		cfg.contentType: map[string]any{
			"schema": map[string]any{"$ref": ref},
		},
	}
	operationBase := strings.Trim(strings.ReplaceAll(cfg.path, "/", "_"), "_")
	if operationBase == "" {
		operationBase = "settings"
	}

	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}

	document := map[string]any{
		"openapi": cfg.openAPIVersion,
		"info":    info,
		"paths": map[string]any{
			cfg.path: map[string]any{
				"get": map[string]any{
					"operationId": "get_" + operationBase,
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Current settings",
							"content":     content,
						},
					},
				},
				"put": map[string]any{
					"operationId": "put_" + operationBase,
					"requestBody": map[string]any{
						"required": true,
						"content":  content,
					},
					"responses": map[string]any{
						"204": map[string]any{"description": "Saved"},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				cfg.component: map[string]any{
					"type":                 "object",
					"properties":           properties,
					"additionalProperties": true,
				},
			},
		},
	}
	return prefs.SchemaDocument{
		Format:   prefs.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}

// propertySchema maps a persisted kind to its JSON schema. Missing keys fall
// back to defaults on load, so no property is required.
func propertySchema(field prefs.FieldDescriptor) (map[string]any, error) {
	var schema map[string]any
	switch field.Type {
	case prefs.KindString.String():
		schema = map[string]any{"type": "string"}
	case prefs.KindInt.String():
		schema = map[string]any{"type": "integer", "format": "int64"}
	case prefs.KindFloat.String():
		schema = map[string]any{"type": "number"}
	default:
		return nil, fmt.Errorf("openapi: field %q has unsupported type %q", field.Name, field.Type)
	}
	if field.Default != nil {
		schema["default"] = field.Default
	}
	return schema, nil
}
