package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fixtureboard/fixtureboard/internal/app"
	"github.com/fixtureboard/fixtureboard/internal/config"
	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/interfaces/cli"
	"github.com/fixtureboard/fixtureboard/internal/observability"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
)

func main() {
	round := flag.Int("round", 0, "show a single round")
	finished := flag.Bool("finished", false, "show finished fixtures only")
	upcoming := flag.Bool("upcoming", false, "show upcoming fixtures only")
	update := flag.String("update", "", `store a result, "<id>=<result>"`)
	appendRow := flag.String("append", "", `add a fixture, "<round>,<date>,<location>,<home>,<away>[,<result>]"`)
	watch := flag.Bool("watch", false, "keep refreshing and re-rendering the dashboard")
	theme := flag.String("theme", "", `switch the color theme: "dark", "light" or "toggle"`)
	signOut := flag.Bool("signout", false, "discard the stored session")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("configure observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("observability shutdown", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	if a.Bridge != nil {
		if err := a.Bridge.Initialize(ctx); err != nil {
			logger.Error("initialize identity", "error", err)
			os.Exit(1)
		}
		if *signOut {
			a.Bridge.SignOut(ctx)
			return
		}
		if token := strings.TrimSpace(os.Getenv("GOOGLE_ID_TOKEN")); token != "" && a.Bridge.CurrentSession() == nil {
			if err := a.Bridge.HandleCredential(ctx, token); err != nil {
				logger.Warn("sign-in failed", "error", err)
			}
		}
	}

	if *theme != "" {
		if err := applyTheme(a, *theme); err != nil {
			logger.Error("switch theme", "error", err)
			os.Exit(1)
		}
	}

	go func() {
		if err := a.Gateway.Initialize(ctx); err != nil {
			logger.Error("load fixtures", "error", err)
		}
	}()
	if err := a.Gateway.AwaitReady(ctx); err != nil {
		logger.Error("fixtures unavailable", "error", err)
		os.Exit(1)
	}

	if *update != "" {
		if err := runUpdate(ctx, a, *update); err != nil {
			logger.Error("update result", "error", err)
			os.Exit(1)
		}
	}
	if *appendRow != "" {
		if err := runAppend(ctx, a, *appendRow); err != nil {
			logger.Error("append fixture", "error", err)
			os.Exit(1)
		}
	}

	renderer := cli.NewRenderer(os.Stdout)
	if *watch {
		// The subscription replays the current collection, so the watch
		// loop renders the first dashboard itself.
		if err := cli.Watch(ctx, a.Dashboard, renderer, cfg.WatchInterval); err != nil && ctx.Err() == nil {
			logger.Error("watch", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := render(ctx, a, renderer, *round, *finished, *upcoming); err != nil {
		logger.Error("render", "error", err)
		os.Exit(1)
	}
}

func render(ctx context.Context, a *app.App, renderer *cli.Renderer, round int, finished, upcoming bool) error {
	switch {
	case round > 0:
		collection, err := a.Dashboard.Round(ctx, round)
		if err != nil {
			return err
		}
		return renderer.RenderFixtures(fmt.Sprintf("Round %d", round), collection)
	case finished:
		d, err := a.Dashboard.Get(ctx)
		if err != nil {
			return err
		}
		return renderer.RenderFixtures("Finished", d.Finished)
	case upcoming:
		d, err := a.Dashboard.Get(ctx)
		if err != nil {
			return err
		}
		return renderer.RenderFixtures("Upcoming", d.Upcoming)
	default:
		d, err := a.Dashboard.Get(ctx)
		if err != nil {
			return err
		}
		return renderer.RenderDashboard(d)
	}
}

func runUpdate(ctx context.Context, a *app.App, arg string) error {
	rawID, result, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf(`invalid -update %q: expected "<id>=<result>"`, arg)
	}
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return fmt.Errorf("invalid -update id %q: %w", rawID, err)
	}
	return a.Editor.UpdateResult(ctx, id, result)
}

func runAppend(ctx context.Context, a *app.App, arg string) error {
	parts := strings.Split(arg, ",")
	if len(parts) < 5 || len(parts) > 6 {
		return fmt.Errorf(`invalid -append %q: expected "<round>,<date>,<location>,<home>,<away>[,<result>]"`, arg)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	round, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid -append round %q: %w", parts[0], err)
	}

	f := fixture.Fixture{
		Round:    round,
		Date:     parts[1],
		Location: parts[2],
		HomeTeam: parts[3],
		AwayTeam: parts[4],
	}
	if len(parts) == 6 {
		f.Result = parts[5]
	}
	return a.Editor.Append(ctx, f)
}

func applyTheme(a *app.App, mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "dark":
		return a.Theme.SetDark(true)
	case "light":
		return a.Theme.SetDark(false)
	case "toggle":
		return a.Theme.Toggle()
	default:
		return fmt.Errorf(`invalid -theme %q: expected "dark", "light" or "toggle"`, mode)
	}
}
