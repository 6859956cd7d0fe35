package main

import "swf-translator/internal/cli"

func main() {
	cli.Execute()
}
