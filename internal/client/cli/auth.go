package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/readkeeper/internal/common"
)

// getToken is an indirection used to facilitate testing.
var getToken = GetToken

// Login prompts for an access token, validates it against the service and
// stores it. When the service runs without authentication nothing is asked.
func (a *App) Login(ctx context.Context) error {
	enabled, err := a.auth.AuthEnabled(ctx)
	if err != nil {
		return fmt.Errorf("check service: %w", err)
	}
	if !enabled {
		a.println("The service does not require a token.")
		return nil
	}

	tok, err := getToken(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(tok)

	if err := a.auth.Login(ctx, string(tok)); err != nil {
		return err
	}
	a.log.Info(ctx, "token stored")
	a.println("Logged in.")
	return nil
}

// Logout drops the stored token. Downloaded items are kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// Status prints connectivity, sync progress, the service scheduler and
// local storage figures.
func (a *App) Status(ctx context.Context) error {
	a.printf("mode:       %s\n", a.conn.Mode())
	a.printf("logged in:  %t\n", a.auth.LoggedIn(ctx))

	p := a.progress.Get()
	switch {
	case p.InProgress:
		a.printf("sync:       running, %s\n", p.Message)
	case p.Message != "":
		a.printf("sync:       idle, last: %s\n", p.Message)
	default:
		a.printf("sync:       idle\n")
	}

	a.printBackground(ctx)
	a.printf("downloaded: %d items\n", a.store.Stats(ctx).Count)
	return nil
}

// printBackground shows the service's scheduler. It is only asked while
// online; otherwise the line says the state is unknown.
func (a *App) printBackground(ctx context.Context) {
	if !a.conn.Online() {
		a.printf("background: unknown (offline)\n")
		return
	}
	st, err := a.library.Status(ctx)
	switch {
	case err != nil:
		a.log.Debug(ctx, "scheduler status unavailable", "error", err)
		a.printf("background: unknown\n")
	case st.Running:
		a.printf("background: running, every %g hours\n", st.IntervalHours)
	default:
		a.printf("background: stopped\n")
	}
}
