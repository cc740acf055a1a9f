package main

import "github.com/findsight/findsight-cli/cmd"

func main() {
	cmd.Execute()
}
