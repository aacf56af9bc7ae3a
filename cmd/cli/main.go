package main

import (
	"fmt"
	"os"

	"kpssquiz/cmd/cli/root"

	_ "kpssquiz/cmd/cli/maintain"
	_ "kpssquiz/cmd/cli/quizcmd"
	_ "kpssquiz/cmd/cli/users"
)

func main() {
	// Execute the root Cobra command
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
