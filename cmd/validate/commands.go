package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

func newResponseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "response FILE...",
		Short: "Parse and validate recorded replies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateResponses(cmd.OutOrStdout(), args)
		},
	}
}

func newReplayCmd() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Apply replies in order to the default character",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replay(cmd.OutOrStdout(), args, asJSON)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the final character as JSON")
	return c
}

func loadResponse(filename string) (*gm.Response, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	resp, err := gm.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return resp, nil
}

func validateResponses(w io.Writer, files []string) error {
	var failed []string
	for _, f := range files {
		resp, err := loadResponse(f)
		if err != nil {
			fmt.Fprintf(w, "FAIL %v\n", err)
			failed = append(failed, f)
			continue
		}
		kind := "narrative"
		switch {
		case resp.CheckRequest != nil:
			kind = fmt.Sprintf("check request (%s DC %d)", check.DisplayName(resp.CheckRequest.Attribute), resp.CheckRequest.Difficulty)
		case resp.HasStateChanges():
			kind = "state changes"
		}
		fmt.Fprintf(w, "ok   %s: %s\n", f, kind)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files invalid", len(failed), len(files))
	}
	return nil
}

func replay(w io.Writer, files []string, asJSON bool) error {
	c := character.Default()
	for i, f := range files {
		resp, err := loadResponse(f)
		if err != nil {
			return err
		}
		res := gm.Apply(c, resp, nil)
		c = res.Character

		fmt.Fprintf(w, "#%d %s\n", i+1, f)
		if res.PendingCheck != nil {
			fmt.Fprintf(w, "   check pending: %s DC %d (%s), other changes ignored\n",
				check.DisplayName(res.PendingCheck.Attribute), res.PendingCheck.Difficulty, res.PendingCheck.Reason)
		}
		if res.Notice != "" {
			fmt.Fprintf(w, "   %s\n", res.Notice)
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	fmt.Fprint(w, summarize(c))
	return nil
}

func summarize(c character.Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s, level %d %s\n", c.Name, c.Level, c.Class)
	fmt.Fprintf(&b, "HP %d/%d  SP %d/%d\n", c.CurrentStats.HP, c.CurrentStats.MaxHP, c.CurrentStats.SP, c.CurrentStats.MaxSP)
	for _, attr := range character.Attributes {
		score, _ := c.Stats.Get(attr)
		fmt.Fprintf(&b, "%s %d  ", check.DisplayName(attr), score)
	}
	b.WriteString("\nInventory:")
	for _, it := range c.Inventory {
		fmt.Fprintf(&b, " [%s] %s;", it.ID, it.Name)
	}
	b.WriteString("\nSkills:")
	for _, s := range c.Skills {
		fmt.Fprintf(&b, " %s;", s.Name)
	}
	b.WriteString("\n")
	return b.String()
}
