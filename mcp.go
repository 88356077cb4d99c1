package rolodex

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPPath is where the streamable-HTTP MCP endpoint is mounted when enabled
const MCPPath = "/mcp"

type MCPPerm uint8

const (
	MCPPermCreate MCPPerm = 1 << iota
	MCPPermRead
	MCPPermUpdate
	MCPPermDelete

	MCPPermCRUD = MCPPermCreate | MCPPermRead | MCPPermUpdate | MCPPermDelete
)

// MCPPermNone disables the MCP endpoint entirely
const MCPPermNone MCPPerm = 0

func (p MCPPerm) Has(flag MCPPerm) bool {
	return p&flag != 0
}

// EnableMCP sets up an MCP server for record CRUD operations, restricted to
// the provided permissions
func (a *API) EnableMCP(perm MCPPerm) *API {
	a.mcpPerm = perm
	return a
}

type mcpServer struct {
	storage Storage
}

func (a *API) mcpHandler() *server.StreamableHTTPServer {
	m := mcpServer{a.storage}

	tools := []server.ServerTool{}

	if a.mcpPerm.Has(MCPPermRead) {
		tools = append(tools,
			server.ServerTool{
				Tool: mcp.NewTool(
					"list_records",
					mcp.WithDescription("list all records in the directory"),
				),
				Handler: m.listAll,
			},
			server.ServerTool{
				Tool: mcp.NewTool(
					"get_record",
					mcp.WithDescription("get a record by last name"),
					mcp.WithString("lname", mcp.Required(), mcp.Description("Last name the record is stored under")),
				),
				Handler: m.get,
			},
		)
	}

	if a.mcpPerm.Has(MCPPermCreate) {
		tools = append(tools, server.ServerTool{
			Tool: mcp.NewTool(
				"create_record",
				mcp.WithDescription("create a new record, replacing any record with the same last name"),
				mcp.WithString("lname", mcp.Required(), mcp.Description("Last name the record is stored under")),
				mcp.WithString("fname", mcp.Description("First name")),
			),
			Handler: m.create,
		})
	}

	if a.mcpPerm.Has(MCPPermUpdate) {
		tools = append(tools, server.ServerTool{
			Tool: mcp.NewTool(
				"update_record",
				mcp.WithDescription("update an existing record, merging provided fields"),
				mcp.WithString("lname", mcp.Required(), mcp.Description("Last name the record is stored under")),
				mcp.WithString("fname", mcp.Description("First name")),
			),
			Handler: m.update,
		})
	}

	if a.mcpPerm.Has(MCPPermDelete) {
		tools = append(tools, server.ServerTool{
			Tool: mcp.NewTool(
				"delete_record",
				mcp.WithDescription("delete a record by last name"),
				mcp.WithString("lname", mcp.Required(), mcp.Description("Last name the record is stored under")),
			),
			Handler: m.delete,
		})
	}

	s := server.NewMCPServer("rolodex", "0.1")
	s.AddTools(tools...)

	return server.NewStreamableHTTPServer(s)
}

func (m mcpServer) listAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := m.storage.GetAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newToolResultJSON(records)
}

func (m mcpServer) get(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastName, err := request.RequireString("lname")
	if err != nil {
		return nil, err
	}

	record, err := m.storage.Get(ctx, lastName)
	if err != nil {
		return nil, err
	}
	return newToolResultJSON(record)
}

func (m mcpServer) create(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastName, err := request.RequireString("lname")
	if err != nil {
		return nil, err
	}

	record := &Record{
		FirstName: request.GetString("fname", ""),
		LastName:  lastName,
	}
	record.Stamp(time.Now())

	err = m.storage.Set(ctx, record)
	if err != nil {
		return nil, err
	}
	return newToolResultJSON(record)
}

func (m mcpServer) update(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastName, err := request.RequireString("lname")
	if err != nil {
		return nil, err
	}

	existing, err := m.storage.Get(ctx, lastName)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Merge(&Record{FirstName: request.GetString("fname", "")})
	updated.Stamp(time.Now())

	err = m.storage.Set(ctx, &updated)
	if err != nil {
		return nil, err
	}
	return newToolResultJSON(&updated)
}

func (m mcpServer) delete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastName, err := request.RequireString("lname")
	if err != nil {
		return nil, err
	}

	err = m.storage.Delete(ctx, lastName)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText("deleted"), nil
}

func newToolResultJSON(out any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
