// Command admin promotes an existing user to the admin role. This is the
// bootstrap path: the very first admin cannot be created through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bloggazers/internal/config"
	"bloggazers/internal/database"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"
)

func main() {
	username := flag.String("username", "", "username of the account to promote")
	demote := flag.Bool("demote", false, "demote to regular user instead")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -username <name> [-demote]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting database: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	user, err := users.GetByUsername(ctx, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "user %q not found\n", *username)
		os.Exit(1)
	}

	role := models.RoleAdmin
	if *demote {
		role = models.RoleUser
	}
	if err := users.UpdateRole(ctx, user.ID, role); err != nil {
		fmt.Fprintf(os.Stderr, "updating role: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s is now %s\n", user.Username, role)
}
