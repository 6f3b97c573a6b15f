package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/schema/openapi"
)

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every declared setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, prop := range a.prefs.Properties() {
				if !prop.Persisted() {
					fmt.Fprintf(out, "%s (not persisted)\n", prop.Name)
					continue
				}
				v := prop.Get(a.prefs.Settings())
				fmt.Fprintf(out, "%s = %s (%s)\n", prop.Name, v, prop.Kind)
			}
			return nil
		},
	}
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := a.prefs.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", prefs.ErrUnknownProperty, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func (a *app) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, text := args[0], args[1]
			prop, ok := a.prefs.Property(name)
			if !ok {
				return fmt.Errorf("%w: %q", prefs.ErrUnknownProperty, name)
			}
			v, err := prefs.ParseValue(prop.Kind, text)
			if err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
			if err := a.prefs.Set(contextOf(cmd), name, v); err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
			return nil
		},
	}
}

func (a *app) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore defaults and save them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.prefs.Reset(contextOf(cmd)) {
				return fmt.Errorf("defaults could not be saved to %s", a.prefs.Location())
			}
			return nil
		},
	}
}

func (a *app) schemaCommand() *cobra.Command {
	var asOpenAPI bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the persisted document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				doc prefs.SchemaDocument
				err error
			)
			if asOpenAPI {
				doc, err = a.prefs.SchemaWith(openapi.NewGenerator())
			} else {
				doc, err = a.prefs.Schema()
			}
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(doc.Document, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asOpenAPI, "openapi", false, "Emit an OpenAPI 3 document")
	return cmd
}

func (a *app) evalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate an expression against the settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.prefs.Evaluate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
