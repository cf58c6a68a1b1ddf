package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

// Sync asks the service to start a quick sync, or a full one with "full".
func (a *App) Sync(ctx context.Context, args []string) error {
	var (
		res models.TriggerResult
		err error
	)
	switch {
	case len(args) == 0:
		res, err = a.library.TriggerQuickSync(ctx)
	case len(args) == 1 && args[0] == "full":
		res, err = a.library.TriggerFullSync(ctx)
	default:
		return usageError("sync [full]")
	}
	if err != nil {
		return err
	}

	if res.Status == models.TriggerAlreadyRunning {
		a.println("A sync is already running.")
		return nil
	}
	a.printf("Sync started (%s).\n", res.Type)
	return nil
}

// Background starts or stops the service-side periodic sync.
func (a *App) Background(ctx context.Context, args []string) error {
	const usage = usageError("bg start [hours] | bg stop")
	if len(args) == 0 {
		return usage
	}

	var (
		st  *models.BackgroundStatus
		err error
	)
	switch {
	case args[0] == "start" && len(args) <= 2:
		var hours float64
		if len(args) == 2 {
			if hours, err = strconv.ParseFloat(args[1], 64); err != nil || hours <= 0 {
				return usage
			}
		}
		st, err = a.library.StartBackground(ctx, hours)
	case args[0] == "stop" && len(args) == 1:
		st, err = a.library.StopBackground(ctx)
	default:
		return usage
	}
	if err != nil {
		return err
	}

	if st.IntervalHours > 0 {
		a.printf("Background sync %s, every %g hours.\n", st.Status, st.IntervalHours)
	} else {
		a.printf("Background sync %s.\n", st.Status)
	}
	return nil
}

// Interval shows the sync interval or sets it when an argument is given.
func (a *App) Interval(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		h, err := a.library.Interval(ctx)
		if err != nil {
			return err
		}
		a.printf("Sync interval: %g hours.\n", h)
		return nil
	case 1:
		h, err := strconv.ParseFloat(args[0], 64)
		if err != nil || h <= 0 {
			return usageError("interval [hours]")
		}
		if err := a.library.SetInterval(ctx, h); err != nil {
			return err
		}
		a.printf("Sync interval set to %g hours.\n", h)
		return nil
	default:
		return usageError("interval [hours]")
	}
}

// History prints the recent sync runs of an owner.
func (a *App) History(ctx context.Context, args []string) error {
	const usage = usageError("history <owner> [limit]")
	if len(args) == 0 || len(args) > 2 {
		return usage
	}
	limit := 10
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return usage
		}
		limit = n
	}

	runs, err := a.library.History(ctx, args[0], limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		a.println("No sync runs.")
		return nil
	}
	for _, r := range runs {
		a.printf("%s  %-8s +%d", r.SyncTime, r.Status, r.ItemsAdded)
		if r.ErrorMessage != "" {
			a.printf("  %s", r.ErrorMessage)
		}
		a.println()
	}
	return nil
}
