// @title           Todo API
// @version         1.0
// @description     Todo lists with items: soft delete, derived completion timestamps, transactional create.
// @host            localhost:8080
// @BasePath        /api/v1
package main

import (
	"os"

	_ "TodoAPI/docs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
