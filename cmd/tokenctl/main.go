// Command tokenctl creates or updates a user row and prints a session token
// for it.  It stands in for the sign-in provider in development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/orgatagova/orgatagova/internal/config"
	"github.com/orgatagova/orgatagova/internal/database"
	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/repository"
	"github.com/orgatagova/orgatagova/internal/utils"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "issue":
		err = runIssue(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  issue   Upsert a user and print a signed session token")
	os.Exit(2)
}

type issueOpts struct {
	userID string
	name   string
	email  string
	image  string
	ttl    int
}

func parseIssueFlags(args []string, defaultTTL int) (issueOpts, error) {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var o issueOpts
	fs.StringVar(&o.userID, "user", "", "user id (required)")
	fs.StringVar(&o.name, "name", "", "display name")
	fs.StringVar(&o.email, "email", "", "email address (default <user>@users.invalid)")
	fs.StringVar(&o.image, "image", "", "avatar URL")
	fs.IntVar(&o.ttl, "ttl", defaultTTL, "token lifetime in minutes")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.userID = strings.TrimSpace(o.userID)
	if o.userID == "" {
		return o, fmt.Errorf("-user is required")
	}
	if o.ttl <= 0 {
		return o, fmt.Errorf("-ttl must be positive")
	}
	if o.name == "" {
		o.name = o.userID
	}
	if o.email == "" {
		// email is unique, so derive one per user
		o.email = o.userID + "@users.invalid"
	}
	return o, nil
}

func runIssue(args []string) error {
	cfg := config.Load()
	opts, err := parseIssueFlags(args, cfg.AccessTTLMin)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	store := repository.NewStore(db, cfg.TxTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	u := &model.User{ID: opts.userID, Name: opts.name, Email: opts.email, Image: opts.image}
	if err := store.Users().Upsert(ctx, u); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	tok, err := utils.NewAccessToken(cfg.JWTSecret, opts.userID, opts.ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		UserID    string    `json:"user_id"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}{opts.userID, tok.Token, tok.Exp})
}
