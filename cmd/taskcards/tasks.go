package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsawler/taskcards/registry"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/tasks"
)

func newTasksCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the built-in tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := tasks.Registry()
			if err != nil {
				return err
			}

			entries := reg.List()
			if category != "" {
				c, err := task.ParseCategory(category)
				if err != nil {
					return taskerr.Wrap(taskerr.Configuration, "tasks", err)
				}
				entries = reg.ByCategory(c)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORIES\tDESCRIPTION")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID(), categories(e), e.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list tasks in this category")
	return cmd
}

func categories(e registry.Entry) string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}
