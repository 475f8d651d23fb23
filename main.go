package main

import (
	"github.com/nikogura/cost-counsel/cmd"
)

func main() {
	cmd.Execute()
}
