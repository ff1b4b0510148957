package main

import "github.com/mvp-joe/pluginspect/internal/cli"

func main() {
	cli.Execute()
}
