package main

import (
	"fmt"
	"os"

	"nndep/app"
)

var cmd = app.AllCommands()

func exit(err error) {
	fmt.Printf("**error**: %v\n", err)
	os.Exit(1)
}

func main() {
	if err := cmd.Dispatch(os.Args[1:]); err != nil {
		exit(err)
	}
}
