package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"yelpcamp/internal/seed"
)

func runSeed(cmd *cobra.Command, _ []string) error {
	password := seedPassword
	if password == "" {
		password = os.Getenv("SEED_PASSWORD")
	}
	if password == "" {
		return errors.New("--password or SEED_PASSWORD is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer b.close(context.Background())

	s := seed.New(b.userService(), b.campgrounds, b.reviews, b.log)
	n, err := s.Run(ctx, seed.Options{Count: seedCount, Owner: seedOwner, Email: seedEmail, Password: password})
	if err != nil {
		return err
	}
	cmd.Printf("seeded %d campgrounds owned by %s\n", n, seedOwner)
	return nil
}
