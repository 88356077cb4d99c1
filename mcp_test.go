package rolodex_test

import (
	"encoding/json"
	"maps"
	"slices"
	"testing"

	"github.com/rolodex-go/rolodex"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, mcpClient *client.Client, name string, args map[string]any) mcp.TextContent {
	t.Helper()

	resp, err := mcpClient.CallTool(t.Context(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	require.NoError(t, err)

	textContent, ok := resp.Content[0].(mcp.TextContent)
	require.True(t, ok)

	return textContent
}

func TestMCP(t *testing.T) {
	api := rolodex.NewAPI().EnableMCP(rolodex.MCPPermCRUD)
	serverURL, stop := rolodex.TestServe(t, api)
	defer stop()

	mcpClient, err := client.NewStreamableHttpClient(serverURL + rolodex.MCPPath)
	require.NoError(t, err)

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	_, err = mcpClient.Initialize(t.Context(), initReq)
	require.NoError(t, err)

	t.Run("AllToolsExist", func(t *testing.T) {
		toolsResp, err := mcpClient.ListTools(t.Context(), mcp.ListToolsRequest{})
		require.NoError(t, err)

		tools := map[string]mcp.Tool{}
		for _, tool := range toolsResp.Tools {
			tools[tool.Name] = tool
		}

		require.ElementsMatch(t, []string{
			"list_records",
			"get_record",
			"create_record",
			"update_record",
			"delete_record",
		}, slices.Collect(maps.Keys(tools)))
	})

	t.Run("CreateRecord", func(t *testing.T) {
		textContent := callTool(t, mcpClient, "create_record", map[string]any{
			"lname": "Nye",
			"fname": "Bill",
		})

		var record rolodex.Record
		require.NoError(t, json.Unmarshal([]byte(textContent.Text), &record))
		require.Equal(t, "Bill", record.FirstName)
		require.Equal(t, "Nye", record.LastName)
		require.NotEmpty(t, record.Timestamp)
	})

	t.Run("GetRecord", func(t *testing.T) {
		textContent := callTool(t, mcpClient, "get_record", map[string]any{
			"lname": "Nye",
		})

		var record rolodex.Record
		require.NoError(t, json.Unmarshal([]byte(textContent.Text), &record))
		require.Equal(t, "Bill", record.FirstName)
	})

	t.Run("UpdateRecord", func(t *testing.T) {
		textContent := callTool(t, mcpClient, "update_record", map[string]any{
			"lname": "Nye",
			"fname": "William",
		})

		var record rolodex.Record
		require.NoError(t, json.Unmarshal([]byte(textContent.Text), &record))
		require.Equal(t, "William", record.FirstName)
		require.Equal(t, "Nye", record.LastName)
	})

	t.Run("ListRecords", func(t *testing.T) {
		textContent := callTool(t, mcpClient, "list_records", nil)

		var records rolodex.Records
		require.NoError(t, json.Unmarshal([]byte(textContent.Text), &records))
		require.Len(t, records, 1)
		require.Equal(t, "Nye", records[0].LastName)
	})

	t.Run("DeleteRecord", func(t *testing.T) {
		textContent := callTool(t, mcpClient, "delete_record", map[string]any{
			"lname": "Nye",
		})
		require.Equal(t, "deleted", textContent.Text)
	})

	t.Run("GetRecord_NotFound", func(t *testing.T) {
		_, err := mcpClient.CallTool(t.Context(), mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_record",
				Arguments: map[string]any{
					"lname": "Nye",
				},
			},
		})
		require.Error(t, err)
		require.Equal(t, "record not found", err.Error())
	})
}
