package main

import "github.com/Skotchmaster/sysuser/cmd/sysuser/cmd"

func main() {
	cmd.Execute()
}
