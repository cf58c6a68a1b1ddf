package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
)

// Directory lists the owners known to the service. When the service cannot
// be reached the copy kept in the local store is shown instead.
func (a *App) Directory(ctx context.Context) error {
	owners, err := a.library.RefreshDirectory(ctx)
	if err != nil {
		a.log.Debug(ctx, "directory unavailable, using local copy", "error", err)
		local, lerr := a.store.ListOwners(ctx)
		if lerr != nil || len(local) == 0 {
			return err
		}
		a.println("(offline copy)")
		owners = local
	}
	if len(owners) == 0 {
		a.println("No owners.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, o := range owners {
		name := o.Name
		if name == "" {
			name = o.Slug
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d unread\n", o.Slug, name, o.UnreadCount, o.ItemCount)
	}
	return tw.Flush()
}

// Items lists the items of an owner; any further arguments form a search
// query.
func (a *App) Items(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("items <owner> [search...]")
	}
	opts := models.ListOptions{Search: strings.Join(args[1:], " ")}

	list, err := a.library.Items(ctx, args[0], opts)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No items.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range list {
		mark := "[ ]"
		if it.IsRead {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, it.ID, it.Title, it.PublishedDate)
	}
	return tw.Flush()
}

// Mark sets the read flag of an item, "unread" as the third argument clears
// it.
func (a *App) Mark(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("mark <owner> <item> [read|unread]")
	}
	isRead := true
	if len(args) == 3 {
		switch args[2] {
		case "read":
		case "unread":
			isRead = false
		default:
			return usageError("mark <owner> <item> [read|unread]")
		}
	}

	if err := a.library.SetRead(ctx, args[0], args[1], isRead); err != nil {
		return err
	}
	if isRead {
		a.println("Marked read.")
	} else {
		a.println("Marked unread.")
	}
	return nil
}

// Keep downloads an item into the local store.
func (a *App) Keep(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("keep <owner> <item>")
	}
	it, err := a.library.Retain(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.printf("Kept %q for offline reading.\n", it.Title)
	return nil
}

// Forget removes a downloaded item and its reading position.
func (a *App) Forget(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("forget <owner> <item>")
	}
	if err := a.library.Forget(ctx, args[0], args[1]); err != nil {
		return err
	}
	a.tracker.Clear(ctx, args[1])
	a.println("Forgotten.")
	return nil
}

// Saved lists every downloaded item, most recent first.
func (a *App) Saved(ctx context.Context) error {
	list, err := a.store.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("Nothing downloaded.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.OwnerID, it.ID, it.Title, it.DownloadedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

// Clear removes every downloaded item after confirmation.
func (a *App) Clear(ctx context.Context) error {
	if !Confirm(a.reader, "Remove every downloaded item?", a.out) {
		a.println("Cancelled.")
		return nil
	}
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.println("Local store cleared.")
	return nil
}
