package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/mholzen/guardstack/pkg/workbench"
)

// Config controls MCP server startup.
type Config struct {
	Expose     string
	Type       string
	Protection protection.Level
	Render     string
	Version    string
	Logger     *slog.Logger
}

// RunServer starts the MCP stdio server with the requested tool set.
func RunServer(ctx context.Context, cfg Config) error {
	expose := strings.TrimSpace(cfg.Expose)
	if expose == "" {
		expose = "all"
	}

	toolsToEnable, err := ParseExposeList(expose)
	if err != nil {
		return err
	}

	builder, err := NewToolBuilder(workbench.Config{
		Type:       cfg.Type,
		Protection: cfg.Protection,
		Render:     cfg.Render,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("cannot create stack session: %w", err)
	}

	serverTools, err := builder.BuildTools(toolsToEnable)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"guardstack",
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	for _, tool := range serverTools {
		server.AddTool(tool.Tool, tool.Handler)
	}

	slog.Debug("mcp server starting", "tools", len(serverTools), "type", cfg.Type, "protection", cfg.Protection.String())

	return mcpserver.ServeStdio(server, mcpserver.WithStdioContextFunc(func(_ context.Context) context.Context {
		return ctx
	}))
}

// ParseExposeList converts the --expose flag into a deduplicated, ordered tool list.
// Supports groups: all, read, write, fault. Individual tools can be referenced either by
// their short name (e.g., "push") or full MCP name (e.g., "stack_push").
func ParseExposeList(raw string) ([]string, error) {
	tokenList := strings.Split(raw, ",")

	var tokens []string
	for _, t := range tokenList {
		token := strings.TrimSpace(strings.ToLower(t))
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}

	if len(tokens) == 0 {
		tokens = []string{"all"}
	}

	result := make([]string, 0, len(allTools))
	seen := make(map[string]struct{})

	addSet := func(names []string) {
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}

	for _, token := range tokens {
		if group, ok := groupMap[token]; ok {
			addSet(group)
			continue
		}

		if alias, ok := aliasMap[token]; ok {
			addSet([]string{alias})
			continue
		}

		// Accept the fully qualified tool name if provided.
		if _, ok := aliasMapFull[token]; ok {
			addSet([]string{token})
			continue
		}

		return nil, fmt.Errorf("unknown tool or group in --expose: %s", token)
	}

	return result, nil
}

var (
	allTools = []string{
		ToolCreate,
		ToolInit,
		ToolPush,
		ToolPop,
		ToolTop,
		ToolDestroy,
		ToolValidate,
		ToolInspect,
		ToolDump,
		ToolInject,
	}

	readTools = []string{
		ToolValidate,
		ToolInspect,
		ToolDump,
		ToolTop,
	}

	writeTools = []string{
		ToolCreate,
		ToolInit,
		ToolPush,
		ToolPop,
		ToolDestroy,
	}

	faultTools = []string{
		ToolInject,
	}

	groupMap = map[string][]string{
		"all":   allTools,
		"read":  readTools,
		"write": writeTools,
		"fault": faultTools,
	}

	aliasMap = map[string]string{
		"create":   ToolCreate,
		"init":     ToolInit,
		"push":     ToolPush,
		"pop":      ToolPop,
		"top":      ToolTop,
		"destroy":  ToolDestroy,
		"validate": ToolValidate,
		"inspect":  ToolInspect,
		"dump":     ToolDump,
		"inject":   ToolInject,
	}

	aliasMapFull = func() map[string]string {
		out := make(map[string]string, len(aliasMap))
		for _, fullName := range allTools {
			out[fullName] = fullName
		}
		return out
	}()
)
