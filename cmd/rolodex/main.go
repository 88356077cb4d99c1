package main

import "github.com/rolodex-go/rolodex"

func main() {
	api := rolodex.NewAPI().EnableMCP(rolodex.MCPPermCRUD)
	api.RunCLI()
}
