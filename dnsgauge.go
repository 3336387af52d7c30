package main

import "github.com/dnsgauge/dnsgauge/cmd"

func main() {
	cmd.Execute()
}
