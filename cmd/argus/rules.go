package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"argus/internal/config"
	"argus/internal/project"
	"argus/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [path]",
	Short: "List registered rules and their configuration",
	Long: `List every builtin rule together with its scope, the severity the
configuration assigns to it and its file targets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	cfg, err := config.Load(filepath.Join(root, project.ManifestName))
	if err != nil {
		return err
	}
	if err := cfg.Validate(rules.Names()); err != nil {
		return err
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	color.NoColor = !(colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout)))
	onStyle := color.New(color.FgCyan, color.Bold)
	offStyle := color.New(color.Faint)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-28s %-18s %-10s %s\n", "RULE", "MODE", "SEVERITY", "TARGETS")
	for _, r := range rules.All() {
		mode := "module"
		if r.HasProjectVisitors() {
			mode = "project"
			if r.Ordered() {
				mode = "project (ordered)"
			}
		}

		sev := "rule default"
		if s, ok := cfg.SeverityOf(r.Name()); ok {
			sev = s.String()
		}

		targets := "-"
		if rc, ok := cfg.Rules[r.Name()]; ok {
			parts := make([]string, 0, len(rc.Include)+len(rc.Exclude))
			parts = append(parts, rc.Include...)
			for _, pat := range rc.Exclude {
				parts = append(parts, "!"+pat)
			}
			if len(parts) > 0 {
				targets = strings.Join(parts, " ")
			}
		}

		label := r.Name()
		style := onStyle
		if !cfg.Enabled(r.Name()) {
			label += " (off)"
			style = offStyle
		}
		// красим уже выровненную ячейку, иначе escape-коды ломают ширину
		fmt.Fprintf(out, "%s %-18s %-10s %s\n", style.Sprint(fmt.Sprintf("%-28s", label)), mode, sev, targets)
	}
	return nil
}
