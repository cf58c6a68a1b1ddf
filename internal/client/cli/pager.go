package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/readkeeper/internal/client/reading"
)

// pagerLineHeight is the height of one terminal line in the units of the
// tracker's anchor offset.
const pagerLineHeight = 20

// Read shows an item page by page. The reading position is restored when
// the item opens, saved periodically while it is open and once more on exit.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("read <owner> <item>")
	}
	owner, itemID := args[0], args[1]

	it, err := a.library.Item(ctx, owner, itemID)
	if err != nil {
		return err
	}

	width, height := terminalSize()
	page := max(height-3, 5)
	doc, err := reading.ParseHTML(it.Body, width, pagerLineHeight)
	if err != nil {
		return err
	}

	if a.tracker.Resume(ctx, itemID, doc) {
		a.println("(resumed)")
	}
	defer func() {
		a.tracker.Save(context.WithoutCancel(ctx), itemID, doc)
		a.tracker.Close()
	}()

	a.println(it.Title)
	a.println(strings.Repeat("=", min(len(it.Title), width)))

	for {
		for _, l := range doc.Page(page) {
			a.println(l)
		}
		cur, total := doc.Line()
		fmt.Fprintf(a.out, "-- %d/%d -- [enter] next, b back, t top, q quit > ", min(cur+page, total), total)

		cmd, err := a.reader.ReadString('\n')
		if err != nil && cmd == "" {
			return nil
		}
		switch strings.TrimSpace(cmd) {
		case "", "n":
			if cur+page >= total {
				return nil
			}
			doc.ScrollLines(page)
		case "b":
			doc.ScrollLines(-page)
		case "t":
			doc.ScrollLines(-cur)
		case "q":
			return nil
		}
	}
}
