// Package resources implements MCP resource handlers for WorkSync.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (worksync://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// Handler manages WorkSync resource endpoints.
type Handler struct {
	registry *registry.Store
	docs     workindex.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(reg *registry.Store, docs workindex.Store) *Handler {
	return &Handler{registry: reg, docs: docs}
}

// RegistryResource returns the MCP resource definition for the project registry.
func (h *Handler) RegistryResource() mcp.Resource {
	return mcp.NewResource(
		"worksync://registry",
		"WorkSync Project Registry",
		mcp.WithResourceDescription("Registered projects with repo paths, descriptions, and guidance inheritance"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleRegistry returns the registered projects as JSON.
func (h *Handler) HandleRegistry(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	reg, err := h.registry.Load()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	payload := struct {
		VaultPath string                      `json:"vault_path"`
		Projects  map[string]registry.Project `json:"projects"`
	}{
		VaultPath: reg.VaultPath,
		Projects:  make(map[string]registry.Project, len(reg.Names())),
	}
	for _, name := range reg.Names() {
		if p, ok := reg.Lookup(name); ok {
			payload.Projects[name] = p
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling registry: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// WorkIndexTemplate returns the resource template for per-project work indexes.
func (h *Handler) WorkIndexTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"worksync://projects/{project}/work-index",
		"Project Work Index",
		mcp.WithTemplateDescription("Raw work-index YAML for a registered project"),
		mcp.WithTemplateMIMEType("application/yaml"),
	)
}

// HandleWorkIndex returns a project's work-index document verbatim.
func (h *Handler) HandleWorkIndex(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	project := projectFromURI(req.Params.URI)
	if project == "" {
		return errorResource(req.Params.URI, "missing project in URI"), nil
	}

	if _, err := h.registry.Require(project); err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	raw, err := os.ReadFile(h.docs.DocumentPath(project))
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/yaml",
			Text:     string(raw),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
