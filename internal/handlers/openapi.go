package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the API description in YAML and JSON
type OpenAPIHandler struct {
	yamlDoc []byte
	jsonDoc []byte
}

// NewOpenAPIHandler loads and parses the document at path once. A missing
// or invalid document is logged and both routes answer 404.
func NewOpenAPIHandler(path string, logger *zap.Logger) *OpenAPIHandler {
	h := &OpenAPIHandler{}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("openapi_unavailable", zap.String("path", path), zap.Error(err))
		return h
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logger.Warn("openapi_invalid", zap.String("path", path), zap.Error(err))
		return h
	}
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		logger.Warn("openapi_invalid", zap.String("path", path), zap.Error(err))
		return h
	}

	h.yamlDoc = data
	h.jsonDoc = jsonDoc
	return h
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI document in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	h.serve(w, "application/x-yaml", h.yamlDoc)
}

// ServeJSON serves the OpenAPI document in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.serve(w, "application/json", h.jsonDoc)
}

func (h *OpenAPIHandler) serve(w http.ResponseWriter, contentType string, body []byte) {
	if body == nil {
		http.Error(w, "OpenAPI document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}
