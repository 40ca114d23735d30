package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/metagen/model"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d classes, %d types, %d vertices\n",
				len(m.Classes()), len(m.Types()), m.Graph().Len())
			return nil
		},
	}
}

func newPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths <class>",
		Short: "Print the containment and naming paths of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			c, ok := m.Class(args[0])
			if !ok {
				return fmt.Errorf("no class named %q", args[0])
			}
			np, err := c.NamingPaths()
			if err != nil {
				return err
			}
			printPaths(cmd.OutOrStdout(), c, np)
			return nil
		},
	}
}

func printPaths(w io.Writer, c *model.Class, np *model.NamingPaths) {
	fmt.Fprintf(w, "%s: %d path(s), unique=%t\n", c.Name, len(np.Paths), np.Unique)
	for _, p := range np.Paths {
		names := make([]string, len(p.Classes))
		for i, k := range p.Classes {
			names[i] = k.Name
		}
		fmt.Fprintf(w, "  %s  %q\n", strings.Join(names, " > "), p.Signature)
		for _, e := range p.Elements {
			rule := "position"
			if e.Rule != nil {
				comps := make([]string, len(e.Rule.Components))
				for i, comp := range e.Rule.Components {
					comps[i] = comp.String()
				}
				rule = strings.Join(comps, ", ")
			}
			fmt.Fprintf(w, "    %s named by %s\n", e.Class.Name, rule)
		}
	}
}

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the msgpack snapshot of the validated graph (read-only, for inspection)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			b, err := m.Graph().MarshalSnapshot()
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("output")
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}
