package main

import "github.com/taskforge/backend/cmd/taskctl/cmd"

func main() {
	cmd.Execute()
}
