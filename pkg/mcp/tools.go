package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/mholzen/guardstack/pkg/format"
	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/mholzen/guardstack/pkg/stack"
	"github.com/mholzen/guardstack/pkg/workbench"
)

const (
	ToolCreate   = "stack_create"
	ToolInit     = "stack_init"
	ToolPush     = "stack_push"
	ToolPop      = "stack_pop"
	ToolTop      = "stack_top"
	ToolDestroy  = "stack_destroy"
	ToolValidate = "stack_validate"
	ToolInspect  = "stack_inspect"
	ToolDump     = "stack_dump"
	ToolInject   = "stack_inject"
)

// ToolBuilder wires one workbench session into MCP tool handlers. Handlers
// may run concurrently, so every access to the session holds mu.
type ToolBuilder struct {
	mu          sync.Mutex
	defaults    workbench.Config
	session     workbench.Session
	diagnostics bytes.Buffer
}

// NewToolBuilder creates a builder with an uninitialized session built from defaults.
func NewToolBuilder(defaults workbench.Config) (*ToolBuilder, error) {
	b := &ToolBuilder{defaults: defaults}
	session, err := b.newSession(defaults)
	if err != nil {
		return nil, err
	}
	b.session = session
	return b, nil
}

func (b *ToolBuilder) newSession(cfg workbench.Config) (workbench.Session, error) {
	cfg.Diagnostics = &b.diagnostics
	return workbench.New(cfg)
}

// BuildTools constructs the requested tools in the order provided.
func (b *ToolBuilder) BuildTools(toolNames []string) ([]mcpserver.ServerTool, error) {
	factories := map[string]func() mcpserver.ServerTool{
		ToolCreate:   b.buildCreateTool,
		ToolInit:     b.buildInitTool,
		ToolPush:     b.buildPushTool,
		ToolPop:      b.buildPopTool,
		ToolTop:      b.buildTopTool,
		ToolDestroy:  b.buildDestroyTool,
		ToolValidate: b.buildValidateTool,
		ToolInspect:  b.buildInspectTool,
		ToolDump:     b.buildDumpTool,
		ToolInject:   b.buildInjectTool,
	}

	var tools []mcpserver.ServerTool
	for _, name := range toolNames {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool: %s", name)
		}
		tools = append(tools, factory())
	}
	return tools, nil
}

// sessionResult is the JSON body of most tool results.
type sessionResult struct {
	Value       string             `json:"value,omitempty"`
	Stack       workbench.Snapshot `json:"stack"`
	Diagnostics string             `json:"diagnostics,omitempty"`
}

// run calls fn on the current session under the lock. Errors become tool
// errors carrying any dump written during the call.
func (b *ToolBuilder) run(fn func(workbench.Session) (string, error)) (*mcptypes.CallToolResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diagnostics.Reset()
	value, err := fn(b.session)
	diagnostics := b.diagnostics.String()
	b.diagnostics.Reset()

	if err != nil {
		if diagnostics != "" {
			return mcptypes.NewToolResultErrorf("%v\n\n%s", err, diagnostics), nil
		}
		return mcptypes.NewToolResultError(err.Error()), nil
	}

	return mcptypes.NewToolResultJSON(sessionResult{
		Value:       value,
		Stack:       b.session.Snapshot(),
		Diagnostics: diagnostics,
	})
}

func (b *ToolBuilder) buildCreateTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolCreate,
			mcptypes.WithDescription("Replace the current stack with a new uninitialized one"),
			mcptypes.WithString("type",
				mcptypes.Description("Element type: "+strings.Join(workbench.Types(), ", ")),
				mcptypes.DefaultString(lo.CoalesceOrEmpty(b.defaults.Type, workbench.DefaultType)),
			),
			mcptypes.WithString("protection",
				mcptypes.Description("Protections, e.g. all, none, dump+hashing, boundary"),
				mcptypes.DefaultString(b.defaults.Protection.String()),
			),
			mcptypes.WithString("render",
				mcptypes.Description("Element renderer: "+strings.Join(format.ListBuiltins(), ", ")),
				mcptypes.DefaultString(lo.CoalesceOrEmpty(b.defaults.Render, "plain")),
			),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			level, err := protection.Parse(req.GetString("protection", b.defaults.Protection.String()))
			if err != nil {
				return mcptypes.NewToolResultError(err.Error()), nil
			}

			cfg := b.defaults
			cfg.Type = req.GetString("type", b.defaults.Type)
			cfg.Protection = level
			cfg.Render = req.GetString("render", b.defaults.Render)

			b.mu.Lock()
			session, err := b.newSession(cfg)
			if err == nil {
				b.session = session
			}
			b.mu.Unlock()
			if err != nil {
				return mcptypes.NewToolResultErrorFromErr("cannot create stack", err), nil
			}

			return b.run(func(workbench.Session) (string, error) {
				return "", nil
			})
		},
	}
}

func (b *ToolBuilder) buildInitTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolInit,
			mcptypes.WithDescription("Allocate and poison the buffer, emptying the stack"),
			mcptypes.WithNumber("capacity",
				mcptypes.Description("Number of elements the stack can hold"),
				mcptypes.Required(),
			),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			capacity := req.GetInt("capacity", 0)
			return b.run(func(s workbench.Session) (string, error) {
				return "", s.Init(capacity)
			})
		},
	}
}

func (b *ToolBuilder) buildPushTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolPush,
			mcptypes.WithDescription("Push a value onto the stack"),
			mcptypes.WithString("value",
				mcptypes.Description("Value to push, parsed as the stack's element type (0x prefixes accepted)"),
				mcptypes.Required(),
			),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			value := strings.TrimSpace(req.GetString("value", ""))
			if value == "" {
				return mcptypes.NewToolResultError("value is required"), nil
			}
			return b.run(func(s workbench.Session) (string, error) {
				return "", s.Push(value)
			})
		},
	}
}

func (b *ToolBuilder) buildPopTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolPop,
			mcptypes.WithDescription("Remove and return the top element"),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			return b.run(workbench.Session.Pop)
		},
	}
}

func (b *ToolBuilder) buildTopTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolTop,
			mcptypes.WithDescription("Return the top element without removing it"),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			return b.run(workbench.Session.Top)
		},
	}
}

func (b *ToolBuilder) buildDestroyTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolDestroy,
			mcptypes.WithDescription("Release the buffer; later operations are refused"),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			return b.run(func(s workbench.Session) (string, error) {
				return "", s.Destroy()
			})
		},
	}
}

func (b *ToolBuilder) buildValidateTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolValidate,
			mcptypes.WithDescription("Check the stack's invariants and report the first violation"),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			return b.run(func(s workbench.Session) (string, error) {
				return s.Validate().String(), nil
			})
		},
	}
}

func (b *ToolBuilder) buildInspectTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolInspect,
			mcptypes.WithDescription("Show bookkeeping, stored and recomputed checksums, and live elements"),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			return b.run(func(workbench.Session) (string, error) {
				return "", nil
			})
		},
	}
}

func (b *ToolBuilder) buildDumpTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolDump,
			mcptypes.WithDescription("Human-readable diagnostic dump of the stack"),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			b.mu.Lock()
			defer b.mu.Unlock()

			var out bytes.Buffer
			b.session.Dump(&out)
			return mcptypes.NewToolResultText(out.String()), nil
		},
	}
}

func (b *ToolBuilder) buildInjectTool() mcpserver.ServerTool {
	faults := lo.Map(stack.Faults(), func(f stack.Fault, _ int) string {
		return f.String()
	})
	return mcpserver.ServerTool{
		Tool: mcptypes.NewTool(
			ToolInject,
			mcptypes.WithDescription("Deliberately corrupt the stack to exercise validation"),
			mcptypes.WithString("fault",
				mcptypes.Description("Fault to inject: "+strings.Join(faults, ", ")),
				mcptypes.Required(),
			),
		),
		Handler: func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			fault, err := stack.ParseFault(req.GetString("fault", ""))
			if err != nil {
				return mcptypes.NewToolResultError(err.Error()), nil
			}
			return b.run(func(s workbench.Session) (string, error) {
				return "", s.Inject(fault)
			})
		},
	}
}
