package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/florianilch/mistgo/internal/api"
	"github.com/florianilch/mistgo/internal/app"
	"github.com/florianilch/mistgo/internal/ui"
)

// maxConcurrentFetches bounds parallel requests of `items get`.
const maxConcurrentFetches = 4

func itemsCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "manage items",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list all items",
				Action: env.onPage(pageItems, env.listItems),
			},
			{
				Name:      "get",
				Usage:     "show one or more items",
				ArgsUsage: "<id>...",
				Action:    env.onPage(pageItems, env.getItems),
			},
			{
				Name:      "create",
				Usage:     "create an item from a JSON object",
				ArgsUsage: "<json>",
				Action:    env.onPage(pageItems, env.createItem),
			},
			{
				Name:      "update",
				Usage:     "replace an item with a JSON object",
				ArgsUsage: "<id> <json>",
				Action:    env.onPage(pageItems, env.updateItem),
			},
			{
				Name:      "delete",
				Usage:     "delete an item",
				ArgsUsage: "<id>",
				Action:    env.onPage(pageItems, env.deleteItem),
			},
		},
	}
}

func (e *environment) listItems(ctx context.Context, _ *cli.Command, a *app.App) error {
	if err := requireSession(ctx, a); err != nil {
		return err
	}

	var resp *api.Response
	err := a.WithSpinner(func() (err error) {
		resp, err = a.Client().ListItems(ctx)
		return err
	})
	if err != nil {
		return err
	}

	var items []map[string]any
	if resp.Decode(&items) == nil && len(items) > 0 {
		return ui.RenderItems(e.stdout, items)
	}
	return printResponse(e.stdout, resp)
}

func (e *environment) getItems(ctx context.Context, cmd *cli.Command, a *app.App) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return errors.New("usage: mistgo items get <id>...")
	}
	if err := requireSession(ctx, a); err != nil {
		return err
	}

	responses := make([]*api.Response, len(ids))
	err := a.WithSpinner(func() error {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentFetches)
		for i, id := range ids {
			g.Go(func() error {
				resp, err := a.Client().GetItem(gCtx, id)
				if err != nil {
					return fmt.Errorf("item %s: %w", id, err)
				}
				responses[i] = resp
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return err
	}

	for _, resp := range responses {
		if err := printResponse(e.stdout, resp); err != nil {
			return err
		}
	}
	return nil
}

func (e *environment) createItem(ctx context.Context, cmd *cli.Command, a *app.App) error {
	if cmd.Args().Len() != 1 {
		return errors.New("usage: mistgo items create <json>")
	}
	if err := requireSession(ctx, a); err != nil {
		return err
	}

	var resp *api.Response
	err := a.WithSpinner(func() (err error) {
		resp, err = a.Client().CreateItem(ctx, json.RawMessage(cmd.Args().First()))
		return err
	})
	if err != nil {
		return err
	}

	a.UI().ShowAlert("Item created", ui.SeveritySuccess)
	return printResponse(e.stdout, resp)
}

func (e *environment) updateItem(ctx context.Context, cmd *cli.Command, a *app.App) error {
	if cmd.Args().Len() != 2 {
		return errors.New("usage: mistgo items update <id> <json>")
	}
	if err := requireSession(ctx, a); err != nil {
		return err
	}

	var resp *api.Response
	err := a.WithSpinner(func() (err error) {
		resp, err = a.Client().UpdateItem(ctx, cmd.Args().Get(0), json.RawMessage(cmd.Args().Get(1)))
		return err
	})
	if err != nil {
		return err
	}

	a.UI().ShowAlert("Item updated", ui.SeveritySuccess)
	return printResponse(e.stdout, resp)
}

func (e *environment) deleteItem(ctx context.Context, cmd *cli.Command, a *app.App) error {
	if cmd.Args().Len() != 1 {
		return errors.New("usage: mistgo items delete <id>")
	}
	if err := requireSession(ctx, a); err != nil {
		return err
	}

	err := a.WithSpinner(func() error {
		_, err := a.Client().DeleteItem(ctx, cmd.Args().First())
		return err
	})
	if err != nil {
		return err
	}

	a.UI().ShowAlert("Item deleted", ui.SeveritySuccess)
	return nil
}

// printResponse writes a JSON body indented, a text body verbatim, and nothing for an empty body.
func printResponse(w io.Writer, resp *api.Response) error {
	switch resp.Kind {
	case api.BodyJSON:
		data, err := json.MarshalIndent(resp.Value(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case api.BodyText:
		_, err := fmt.Fprintln(w, resp.Text())
		return err
	default:
		return nil
	}
}
