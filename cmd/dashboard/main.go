package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manzanit0/skydash/pkg/config"
	"github.com/manzanit0/skydash/pkg/dashboard"
	"github.com/manzanit0/skydash/pkg/logger"
	"github.com/manzanit0/skydash/pkg/render"
)

var keyHints = map[dashboard.ActionKind]string{
	dashboard.ActionEnableLocation: "l",
	dashboard.ActionRetry:          "r",
	dashboard.ActionRefresh:        "r",
}

type Dashboard interface {
	View() dashboard.View
	Invoke(dashboard.ActionKind) error
	Subscribe() (<-chan struct{}, func())
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load configuration: %s\n", err)
		os.Exit(1)
	}

	// stdout belongs to the dashboard.
	log := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format).With("service", "skydash-terminal")
	slog.SetDefault(log)

	d, err := dashboard.New(cfg, log)
	if err != nil {
		log.Error("unable to build dashboard", "error", err.Error())
		os.Exit(1)
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := d.Run(ctx); err != nil {
			log.Error("dashboard stopped", "error", err.Error())
		}
	}()

	commands := make(chan string)
	go readCommands(os.Stdin, commands)

	loop(ctx, d, commands, os.Stdout)
}

func readCommands(r io.Reader, out chan<- string) {
	defer close(out)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- strings.ToLower(strings.TrimSpace(scanner.Text()))
	}
}

// loop redraws the view on every change and runs commands until ctx is done,
// the user quits or commands is closed.
func loop(ctx context.Context, d Dashboard, commands <-chan string, w io.Writer) {
	changes, unsubscribe := d.Subscribe()
	defer unsubscribe()

	draw(d, w)

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			draw(d, w)
		case cmd, ok := <-commands:
			if !ok || cmd == "q" {
				return
			}

			if err := execute(d, cmd); err != nil {
				fmt.Fprintf(w, "%s\n", err)
			}
		}
	}
}

func draw(d Dashboard, w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
	fmt.Fprint(w, render.View(d.View(), render.WithKeyHints(keyHints), render.WithHourly(8)))
	fmt.Fprintln(w, "[q] quit")
}

func execute(d Dashboard, cmd string) error {
	switch cmd {
	case "":
		return nil
	case "l":
		return describe(d.Invoke(dashboard.ActionEnableLocation))
	case "r":
		kind := dashboard.ActionRefresh
		if a := d.View().Action; a != nil && a.Kind == dashboard.ActionRetry {
			kind = dashboard.ActionRetry
		}
		return describe(d.Invoke(kind))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func describe(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrActionUnavailable):
		return fmt.Errorf("that action is not available right now")
	case errors.Is(err, dashboard.ErrActionDisabled):
		return fmt.Errorf("please wait, still fetching")
	default:
		return err
	}
}
