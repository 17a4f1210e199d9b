package main

import "github.com/wiratama/access-management/cmd"

func main() {
	cmd.Execute()
}
