package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ingredient-scanner/cmd/ingredient-scan/ui"
	"ingredient-scanner/internal/wordlist"
)

func newListsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lists",
		Aliases: []string{"list"},
		Short:   "Show and edit the suspicious and prohibited ingredient lists",
	}
	cmd.AddCommand(
		newListsShowCmd(g),
		newListsAddCmd(g),
		newListsRemoveCmd(g),
		newListsResetCmd(g),
	)
	return cmd
}

func newListsShowCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [suspicious|prohibited]",
		Short: "Print one or both lists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			cats := wordlist.Categories()
			if len(args) == 1 {
				c, err := wordlist.ParseCategory(args[0])
				if err != nil {
					return err
				}
				cats = []wordlist.Category{c}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				m := make(map[string][]string, len(cats))
				for _, c := range cats {
					m[c.String()] = rt.Lists.Get(c)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}
			for _, c := range cats {
				ui.PrintList(out, c, rt.Lists.Get(c))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newListsAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add suspicious|prohibited PHRASE...",
		Short: "Add phrases to a list",
		Long:  "Add trims and lower-cases each phrase. Phrases already on the list are skipped.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wordlist.ParseCategory(args[0])
			if err != nil {
				return err
			}
			rt, err := g.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			for _, phrase := range args[1:] {
				norm := wordlist.NormalizePhrase(phrase)
				added, err := rt.Lists.Add(cmd.Context(), c, phrase)
				if err != nil {
					return err
				}
				if added {
					ui.Success(out, "added %q to %s", norm, c)
				} else {
					fmt.Fprintf(out, "%q already on %s list, skipped\n", norm, c)
				}
			}
			return nil
		},
	}
}

func newListsRemoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "remove suspicious|prohibited INDEX|PHRASE",
		Short: "Remove an entry by index or by phrase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wordlist.ParseCategory(args[0])
			if err != nil {
				return err
			}
			rt, err := g.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			if idx, convErr := strconv.Atoi(args[1]); convErr == nil {
				removed, err := rt.Lists.RemoveAt(cmd.Context(), c, idx)
				if err != nil {
					return err
				}
				ui.Success(out, "removed %q from %s", removed, c)
				return nil
			}

			ok, err := rt.Lists.Remove(cmd.Context(), c, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%q is not on the %s list", wordlist.NormalizePhrase(args[1]), c)
			}
			ui.Success(out, "removed %q from %s", wordlist.NormalizePhrase(args[1]), c)
			return nil
		},
	}
}

func newListsResetCmd(g *globals) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore both lists to the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "Replace both lists with the defaults? Your changes will be lost. [y/N] ") {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			rt, err := g.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Lists.ResetDefaults(cmd.Context()); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), "word lists reset to defaults")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
