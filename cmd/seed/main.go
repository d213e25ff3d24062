// Command seed fills the configured database with generated content for
// local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bloggazers/internal/config"
	"bloggazers/internal/database"
	"bloggazers/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "number of posts to create")
	flag.IntVar(&opts.Comments, "comments", opts.Comments, "number of comments to create")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed (0 means random)")
	flag.Parse()

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

	if err := seed.Run(context.Background(), db, opts); err != nil {
		fmt.Fprintf(os.Stderr, "seeding: %v\n", err)
		os.Exit(1)
	}
}
