package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/mentatproj/mentat/internal/apiserver"
)

func main() {
	if err := apiserver.NewAPIServerCommand("mentat-apiserver").Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
