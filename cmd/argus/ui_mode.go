package main

import (
	"fmt"
	"os"
	"strings"

	"argus/internal/config"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI reports whether the progress view runs. В режиме auto
// интерфейс включается только на терминале и только для pretty-вывода:
// машинные форматы не должны делить stdout с отрисовкой.
func shouldUseTUI(mode uiMode, format config.Format) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return format == config.FormatPretty && isTerminal(os.Stdout)
	}
}
