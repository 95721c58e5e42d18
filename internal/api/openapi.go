package api

// buildOpenAPIDoc returns an OpenAPI 3.1 document for the compile server.
func buildOpenAPIDoc(version string) map[string]any {
	if version == "" {
		version = "dev"
	}
	body := map[string]any{
		"required": true,
		"content": map[string]any{
			"application/yaml": map[string]any{
				"schema": map[string]any{"type": "string", "description": "Authoring document"},
			},
		},
	}
	security := []any{map[string]any{"BearerAuth": []string{}}}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "dagspec compile server",
			"version": version,
		},
		"paths": map[string]any{
			"/healthz": map[string]any{
				"get": map[string]any{
					"operationId": "healthz",
					"responses":   map[string]any{"200": map[string]any{"description": "Server is up"}},
				},
			},
			"/compile": map[string]any{
				"post": map[string]any{
					"operationId": "compile",
					"summary":     "Compile an authoring document into a Workflow",
					"parameters": []any{map[string]any{
						"name":   "format",
						"in":     "query",
						"schema": map[string]any{"type": "string", "enum": []string{FormatJSON, FormatYAML}},
					}},
					"requestBody": body,
					"responses": map[string]any{
						"200": map[string]any{"description": "Compiled workflow"},
						"401": map[string]any{"description": "Missing or invalid token"},
						"403": map[string]any{"description": "Insufficient scope"},
						"422": map[string]any{"description": "Document does not compile"},
					},
					"security": security,
				},
			},
			"/lint": map[string]any{
				"post": map[string]any{
					"operationId": "lint",
					"summary":     "Compile and lint against the workflow server",
					"parameters": []any{map[string]any{
						"name":   "namespace",
						"in":     "query",
						"schema": map[string]any{"type": "string"},
					}},
					"requestBody": body,
					"responses": map[string]any{
						"200": map[string]any{"description": "Linted workflow"},
						"422": map[string]any{"description": "Rejected by compiler or server"},
						"502": map[string]any{"description": "Workflow server unreachable"},
						"503": map[string]any{"description": "No workflow server configured"},
					},
					"security": security,
				},
			},
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"BearerAuth": map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
		},
	}
}
