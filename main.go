package main

import "github.com/fakeyudi/kado/cmd"

func main() {
	cmd.Execute()
}
