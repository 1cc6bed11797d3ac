package main

import (
	"os"

	"github.com/AshishJayaram/log-reader-backend/internal/cli"
)

// @title        Vehicle Diagnostics API
// @version      1.0
// @description  Upload, query and export vehicle diagnostic logs.
// @host         localhost:8080
// @BasePath     /
func main() {
	os.Exit(cli.Execute())
}
