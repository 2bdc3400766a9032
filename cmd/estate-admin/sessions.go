package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	redisstore "github.com/estatehub/estate-api/internal/adapters/redis"
)

type sessionsListOptions struct {
	Role  string
	Limit int
}

func runSessionsList(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionsListFlags(args)
	if err != nil {
		return err
	}
	return withSessionStore(cmdCtx, func(ctx context.Context, store *redisstore.SessionStore) error {
		return listSessions(ctx, store, cmdCtx.Out, opts)
	})
}

func parseSessionsListFlags(args []string) (sessionsListOptions, error) {
	fs := flag.NewFlagSet("sessions-list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := sessionsListOptions{}
	fs.StringVar(&opts.Role, "role", "", "Only show sessions with this role")
	fs.IntVar(&opts.Limit, "limit", 0, "Maximum number of sessions to print (0 = all)")

	if err := fs.Parse(args); err != nil {
		return sessionsListOptions{}, err
	}
	if opts.Limit < 0 {
		return sessionsListOptions{}, errors.New("--limit must not be negative")
	}
	opts.Role = strings.ToLower(strings.TrimSpace(opts.Role))
	return opts, nil
}

func listSessions(ctx context.Context, store *redisstore.SessionStore, out io.Writer, opts sessionsListOptions) error {
	var live []redisstore.LiveSession
	err := store.Scan(ctx, func(s redisstore.LiveSession) error {
		if opts.Role != "" && string(s.Session.Role) != opts.Role {
			return nil
		}
		live = append(live, s)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}

	if len(live) == 0 {
		return writeln(out, "No live sessions.")
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].Session.IssuedAt.After(live[j].Session.IssuedAt)
	})
	total := len(live)
	if opts.Limit > 0 && len(live) > opts.Limit {
		live = live[:opts.Limit]
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "USER ID\tEMAIL\tROLE\tISSUED AT\tEXPIRES IN"); err != nil {
		return err
	}
	for _, s := range live {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Subject,
			s.Session.Email,
			s.Session.Role,
			s.Session.IssuedAt.UTC().Format(time.RFC3339),
			renderTTL(s.TTL),
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(out, "\n%d of %d live session(s) shown.\n", len(live), total)
}

func renderTTL(d time.Duration) string {
	if d < 0 {
		return "no expiry"
	}
	return d.Round(time.Second).String()
}

type sessionsRevokeOptions struct {
	UserID string
}

func runSessionsRevoke(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionsRevokeFlags(args)
	if err != nil {
		return err
	}
	return withSessionStore(cmdCtx, func(ctx context.Context, store *redisstore.SessionStore) error {
		if revokeErr := store.Delete(ctx, opts.UserID); revokeErr != nil {
			return fmt.Errorf("revoke session: %w", revokeErr)
		}
		cmdCtx.Logger.Info("session revoked", "user_id", opts.UserID)
		return writef(cmdCtx.Out, "Session for %s revoked.\n", opts.UserID)
	})
}

func parseSessionsRevokeFlags(args []string) (sessionsRevokeOptions, error) {
	fs := flag.NewFlagSet("sessions-revoke", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := sessionsRevokeOptions{}
	fs.StringVar(&opts.UserID, "user", "", "ID of the user whose session should be deleted")

	if err := fs.Parse(args); err != nil {
		return sessionsRevokeOptions{}, err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.UserID == "" {
		return sessionsRevokeOptions{}, errors.New("--user is required")
	}
	return opts, nil
}
