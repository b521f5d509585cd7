package main

import "antom-cli/cmd"

func main() {
	cmd.Execute()
}
