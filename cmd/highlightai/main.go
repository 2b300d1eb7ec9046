package main

import "github.com/jianxion/highlightAI/internal/cli"

func main() {
	cli.Main()
}
