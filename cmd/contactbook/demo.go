package main

import (
	"context"
	"fmt"
	"io"

	"contactbook/internal/core"

	"github.com/spf13/cobra"
)

func newDemoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the add/undo/redo and delete/undo/delete scenarios and print the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), core.WithActivityCapacity(cfg.ActivityCapacity))
		},
	}
}

type demoStep struct {
	label string
	run   func(ctx context.Context, svc *core.Service) error
}

func runDemo(ctx context.Context, out io.Writer, opts ...core.ServiceOption) error {
	scenarios := []struct {
		name  string
		steps []demoStep
	}{
		{
			name: "add, undo, redo",
			steps: []demoStep{
				{"add Eve", func(ctx context.Context, svc *core.Service) error {
					_, err := svc.Add(ctx, "Eve", "eve@x.com")
					return err
				}},
				{"search eve", searchStep("eve")},
				{"undo", undoStep},
				{"search eve", searchStep("eve")},
				{"redo", redoStep},
			},
		},
		{
			name: "delete, undo, delete, redo",
			steps: []demoStep{
				{"delete Bob", deleteStep("Bob")},
				{"search bob", searchStep("bob")},
				{"undo", undoStep},
				{"delete Bob", deleteStep("Bob")},
				{"redo", redoStep},
			},
		},
	}

	for _, sc := range scenarios {
		svc := core.NewFixtureService(opts...)
		if _, err := fmt.Fprintf(out, "== %s\n", sc.name); err != nil {
			return err
		}
		for _, step := range sc.steps {
			result := "ok"
			if err := step.run(ctx, svc); err != nil {
				result = err.Error()
			}
			if _, err := fmt.Fprintf(out, "%-12s %-28s contacts=%d undo=%t redo=%t\n",
				step.label, result, len(svc.Contacts()), svc.CanUndo(), svc.CanRedo()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, "activity:"); err != nil {
			return err
		}
		for _, a := range svc.Activities() {
			if _, err := fmt.Fprintf(out, "  %s\n", a.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

func searchStep(name string) func(context.Context, *core.Service) error {
	return func(ctx context.Context, svc *core.Service) error {
		_, err := svc.Search(ctx, name)
		return err
	}
}

func deleteStep(name string) func(context.Context, *core.Service) error {
	return func(ctx context.Context, svc *core.Service) error {
		_, err := svc.Delete(ctx, name)
		return err
	}
}

func undoStep(ctx context.Context, svc *core.Service) error {
	_, err := svc.Undo(ctx)
	return err
}

func redoStep(ctx context.Context, svc *core.Service) error {
	_, err := svc.Redo(ctx)
	return err
}
