// Command migrate runs schema migration and exits. Deployments run it as a
// pre-start step so the server binary never races itself on schema changes.
package main

import (
	"fmt"
	"os"

	"bloggazers/internal/config"
	"bloggazers/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// Connect runs AutoMigrate as part of opening the pool.
	if _, err := database.Connect(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrating: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}
