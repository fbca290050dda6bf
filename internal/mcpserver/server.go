// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes kondate tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kondate/internal/catalog"
	"github.com/starford/kondate/internal/oracle"
	"github.com/starford/kondate/internal/recipe"
)

const formatURI = "kondate://recipe-format"

// Server wraps the MCP server with kondate tools.
type Server struct {
	mcp *server.MCPServer
	svc *recipe.Service
	cat catalog.Catalog
}

// New creates a new MCP server with all kondate tools registered.
// cat may be nil, in which case list_cached_recipes is not offered.
func New(svc *recipe.Service, cat catalog.Catalog) *Server {
	s := &Server{svc: svc, cat: cat}

	s.mcp = server.NewMCPServer(
		"kondate",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("suggest_recipes",
		mcp.WithDescription("Suggest recipes that use the given ingredients. "+
			"Every call asks the model afresh; results are not cached."),
		mcp.WithArray("ingredients", mcp.Required(),
			mcp.Description("Ingredients on hand, e.g. [\"egg\", \"rice\"]"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), s.suggestRecipes)

	s.mcp.AddTool(mcp.NewTool("get_recipe_detail",
		mcp.WithDescription("Get the full recipe for a name returned by suggest_recipes. "+
			"The first request generates and caches it; later requests read the cache. "+
			"See the kondate://recipe-format resource for the document shape."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name exactly as suggested")),
	), s.getRecipeDetail)

	s.mcp.AddTool(mcp.NewTool("recipe_key",
		mcp.WithDescription("Return the 8-character cache key for a recipe name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name")),
	), s.recipeKey)

	if cat != nil {
		s.mcp.AddTool(mcp.NewTool("list_cached_recipes",
			mcp.WithDescription("List recipes already in the cache, newest first."),
			mcp.WithString("query", mcp.Description("Optional substring of name or description")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 50)")),
		), s.listCachedRecipes)
	}

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Recipe Format",
			mcp.WithResourceDescription("JSON shape of a cached recipe document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecipeFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// stringList accepts a JSON array of strings or a comma-separated string.
func stringList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if str, ok := e.(string); ok {
				raw = append(raw, str)
			}
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, oracle.ErrParse):
		return mcp.NewToolResultError("the model returned an unparseable reply: " + err.Error())
	case errors.Is(err, oracle.ErrOracle):
		return mcp.NewToolResultError("the model is unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) suggestRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ingredients := stringList(req.GetArguments()["ingredients"])
	if len(ingredients) == 0 {
		return mcp.NewToolResultError("ingredients: at least one ingredient is required"), nil
	}
	overviews, err := s.svc.Suggest(ctx, ingredients)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(overviews), nil
}

func (s *Server) getRecipeDetail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDetail(ctx, name)
	if err != nil {
		return toolError(err), nil
	}
	if doc.IsEmpty() {
		return mcp.NewToolResultError(fmt.Sprintf("no recipe could be generated for %q; try again later", name)), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) recipeKey(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.svc.Key(name)), nil
}

func (s *Server) listCachedRecipes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	limit := 0
	if f, ok := args["limit"].(float64); ok {
		limit = int(f)
	}
	items, total, err := s.cat.List(limit, 0, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("no cached recipes"), nil
	}
	return jsonResult(items), nil
}

func (s *Server) readRecipeFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     RecipeFormat,
		},
	}, nil
}
