package apiserver

import (
	"fmt"
	"net/http"
)

// OpenAPI 3.0 spec structures

// OpenAPISpec represents an OpenAPI 3.0 specification
type OpenAPISpec struct {
	OpenAPI string                 `json:"openapi"`
	Info    OpenAPIInfo            `json:"info"`
	Servers []OpenAPIServer        `json:"servers"`
	Paths   map[string]OpenAPIPath `json:"paths"`
}

// OpenAPIInfo contains API metadata
type OpenAPIInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// OpenAPIServer describes a server
type OpenAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIPath represents operations for a path
type OpenAPIPath struct {
	Get  *OpenAPIOperation `json:"get,omitempty"`
	Post *OpenAPIOperation `json:"post,omitempty"`
}

// OpenAPIOperation describes an API operation
type OpenAPIOperation struct {
	Summary     string                     `json:"summary"`
	Description string                     `json:"description,omitempty"`
	OperationID string                     `json:"operationId,omitempty"`
	Responses   map[string]OpenAPIResponse `json:"responses"`
	RequestBody *OpenAPIRequestBody        `json:"requestBody,omitempty"`
}

// OpenAPIResponse describes a response
type OpenAPIResponse struct {
	Description string                  `json:"description"`
	Content     map[string]OpenAPIMedia `json:"content,omitempty"`
}

// OpenAPIRequestBody describes a request body
type OpenAPIRequestBody struct {
	Description string                  `json:"description,omitempty"`
	Required    bool                    `json:"required,omitempty"`
	Content     map[string]OpenAPIMedia `json:"content"`
}

// OpenAPIMedia describes media type content
type OpenAPIMedia struct {
	Schema *OpenAPISchema `json:"schema,omitempty"`
}

// OpenAPISchema describes a schema
type OpenAPISchema struct {
	Type       string                   `json:"type,omitempty"`
	Properties map[string]OpenAPISchema `json:"properties,omitempty"`
	Items      *OpenAPISchema           `json:"items,omitempty"`
}

// EndpointInfo represents information about an API endpoint
type EndpointInfo struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// LabelInfo describes one verdict label a caller may receive
type LabelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EndpointMetadata stores metadata about an endpoint for API documentation
type EndpointMetadata struct {
	Path        string
	Method      string
	Description string
}

// APIOverviewResponse represents the response for GET /api/v1
type APIOverviewResponse struct {
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   []EndpointInfo    `json:"endpoints"`
	Labels      []LabelInfo       `json:"labels"`
	Links       map[string]string `json:"links"`
}

// endpointRegistry is a centralized registry of all API endpoints with their metadata
var endpointRegistry = []EndpointMetadata{
	{Path: "/health", Method: "GET", Description: "Health check and component snapshot"},
	{Path: "/api/v1", Method: "GET", Description: "API discovery and documentation"},
	{Path: "/openapi.json", Method: "GET", Description: "OpenAPI 3.0 specification"},
	{Path: "/docs", Method: "GET", Description: "Interactive Swagger UI documentation"},
	{Path: "/api/v1/verdicts", Method: "POST", Description: "Check a headline or article URL for credibility"},
	{Path: "/api/v1/verdicts", Method: "GET", Description: "List recent audit records, newest first"},
	{Path: "/api/v1/verdicts/{id}", Method: "GET", Description: "Fetch one audit record by id"},
}

// labelRegistry enumerates the labels a verdict can carry
var labelRegistry = []LabelInfo{
	{Name: "REAL", Description: "Corroborated by a trusted source or judged credible by the classifier"},
	{Name: "FAKE", Description: "Rejected by the classifier with no trusted corroboration"},
	{Name: "INVALID", Description: "Input rejected before classification (greeting, gibberish, too short, failed extraction)"},
}

// handleAPIOverview handles GET /api/v1 for API discovery
func (s *Server) handleAPIOverview(w http.ResponseWriter, _ *http.Request) {
	endpoints := make([]EndpointInfo, 0, len(endpointRegistry))
	for _, metadata := range endpointRegistry {
		endpoints = append(endpoints, EndpointInfo(metadata))
	}

	response := APIOverviewResponse{
		Service:     "CredGate Credibility API",
		Version:     "v1",
		Description: "API for news credibility verdicts with trusted-source corroboration",
		Endpoints:   endpoints,
		Labels:      labelRegistry,
		Links: map[string]string{
			"openapi_spec": "/openapi.json",
			"swagger_ui":   "/docs",
			"health":       "/health",
		},
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// generateOpenAPISpec generates an OpenAPI 3.0 specification from the endpoint registry
func (s *Server) generateOpenAPISpec() OpenAPISpec {
	spec := OpenAPISpec{
		OpenAPI: "3.0.0",
		Info: OpenAPIInfo{
			Title:       "CredGate Credibility API",
			Description: "API for news credibility verdicts with trusted-source corroboration",
			Version:     "v1",
		},
		Servers: []OpenAPIServer{
			{
				URL:         "/",
				Description: "CredGate API Server",
			},
		},
		Paths: make(map[string]OpenAPIPath),
	}

	for _, endpoint := range endpointRegistry {
		path, ok := spec.Paths[endpoint.Path]
		if !ok {
			path = OpenAPIPath{}
		}

		operation := &OpenAPIOperation{
			Summary:     endpoint.Description,
			Description: endpoint.Description,
			OperationID: fmt.Sprintf("%s_%s", endpoint.Method, endpoint.Path),
			Responses: map[string]OpenAPIResponse{
				"200": {
					Description: "Successful response",
					Content: map[string]OpenAPIMedia{
						"application/json": {
							Schema: &OpenAPISchema{
								Type: "object",
							},
						},
					},
				},
				"400": {
					Description: "Bad request",
					Content: map[string]OpenAPIMedia{
						"application/json": {
							Schema: &OpenAPISchema{
								Type: "object",
								Properties: map[string]OpenAPISchema{
									"error": {
										Type: "object",
										Properties: map[string]OpenAPISchema{
											"code":      {Type: "string"},
											"message":   {Type: "string"},
											"timestamp": {Type: "string"},
										},
									},
								},
							},
						},
					},
				},
			},
		}

		if endpoint.Method == "POST" {
			operation.RequestBody = &OpenAPIRequestBody{
				Required: true,
				Content: map[string]OpenAPIMedia{
					"application/json": {
						Schema: &OpenAPISchema{
							Type: "object",
							Properties: map[string]OpenAPISchema{
								"text": {Type: "string"},
								"url":  {Type: "string"},
							},
						},
					},
				},
			}
		}

		switch endpoint.Method {
		case "GET":
			path.Get = operation
		case "POST":
			path.Post = operation
		}

		spec.Paths[endpoint.Path] = path
	}

	return spec
}

// handleOpenAPISpec serves the OpenAPI 3.0 specification at /openapi.json
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	spec := s.generateOpenAPISpec()
	s.writeJSONResponse(w, http.StatusOK, spec)
}

// handleSwaggerUI serves the Swagger UI at /docs
func (s *Server) handleSwaggerUI(w http.ResponseWriter, _ *http.Request) {
	// Serve a simple HTML page that loads Swagger UI from CDN
	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>CredGate API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css">
    <style>
        body {
            margin: 0;
            padding: 0;
        }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-standalone-preset.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "/openapi.json",
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIStandalonePreset
                ],
                plugins: [
                    SwaggerUIBundle.plugins.DownloadUrl
                ],
                layout: "StandaloneLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
