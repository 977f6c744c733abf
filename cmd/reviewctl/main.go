package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sngm3741/pcb-intake-services/api/internal/logger"
	"github.com/sngm3741/pcb-intake-services/api/internal/reviewclient"
)

const usage = `usage: reviewctl [flags] list
       reviewctl [flags] set-status <id> <status>

The operator secret is read from REVIEW_SECRET.`

func main() {
	baseURL := flag.String("api", envOrDefault("REVIEW_API_URL", "http://localhost:8080"), "intake API base URL")
	timeout := flag.Duration("timeout", 15*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()

	log, err := logger.NewSugared(envOrDefault("LOG_LEVEL", "warn"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	client, err := reviewclient.New(reviewclient.Config{BaseURL: *baseURL})
	if err != nil {
		log.Fatalw("invalid client configuration", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Login(ctx, os.Getenv("REVIEW_SECRET")); err != nil {
		log.Fatalw("login failed", "error", err)
	}
	defer client.Logout()

	switch args[0] {
	case "list":
		items, err := client.LoadList(ctx)
		if err != nil {
			log.Fatalw("list failed", "error", err)
		}
		printList(items)
	case "set-status":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		if err := client.SetStatus(ctx, args[1], args[2]); err != nil {
			if errors.Is(err, reviewclient.ErrSessionExpired) {
				log.Fatalw("session expired, run the command again", "error", err)
			}
			log.Fatalw("status update failed", "id", args[1], "status", args[2], "error", err)
		}
		log.Infow("status updated", "id", args[1], "status", args[2])
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printList(items []reviewclient.Submission) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tSTATUS\tNAME\tEMAIL\tPHONE\tFILE\tID")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.CreatedAt.Local().Format("2006-01-02 15:04"),
			item.Status, item.Name, item.Email, item.Phone, item.FileURL, item.ID)
	}
	_ = w.Flush()
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
