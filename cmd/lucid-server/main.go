package main

import (
	"os"

	"github.com/lucidia/lucid-server/lucidservice"
)

func main() {
	if err := lucidservice.Run(); err != nil {
		os.Exit(1)
	}
}
