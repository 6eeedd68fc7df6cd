// Package sdk provides a typed Go client for the ccblogger MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per MCP tool,
// connection management, and automatic retry via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("ccblogger", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	info, _ := c.Initialize(ctx)
//	tasks, _ := c.ListTasks(ctx, "")
//	fmt.Println(len(tasks))
package sdk
