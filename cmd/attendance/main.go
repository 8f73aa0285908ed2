package main

import (
	"fmt"
	"os"

	"office-attendance/cmd/attendance/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
