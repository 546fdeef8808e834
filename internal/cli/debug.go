package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/utils"
)

type DebugCmd struct {
	DBPath            DebugDBPathCmd            `cmd:"" name:"db-path" help:"Show database, config and log paths."`
	Dump              DebugDumpCmd              `cmd:"" help:"Dump every stored key as JSON."`
	SetCompletionDate DebugSetCompletionDateCmd `cmd:"" name:"set-completion-date" help:"Back-date the last completed day."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	output := map[string]string{
		"path":   ctx.Store.GetConfigPath(),
		"config": ctx.ConfigPath,
		"log":    logger.Path(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpCmd struct{}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	dump, err := dumpStore(ctx)
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

// dumpStore reads every key. Values holding JSON are embedded as JSON rather than as strings.
func dumpStore(ctx *Context) (map[string]any, error) {
	keys, err := ctx.Store.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(keys)

	dump := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := ctx.Store.Get(k)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		if json.Valid([]byte(v)) {
			dump[k] = json.RawMessage(v)
		} else {
			dump[k] = v
		}
	}
	return dump, nil
}

type DebugSetCompletionDateCmd struct {
	Date string `arg:"" help:"Date of the last completed day (YYYY-MM-DD or 'yesterday')."`
}

func (cmd *DebugSetCompletionDateCmd) Run(ctx *Context) error {
	date := cmd.Date
	if date == "yesterday" {
		date = utils.LocalDate(ctx.Now().AddDate(0, 0, -1))
	}

	ctx.Tracker.LoadState()
	state, err := ctx.Tracker.SetCompletionDate(date)
	if err != nil {
		return fmt.Errorf("%w: %s", err, cmd.Date)
	}

	fmt.Printf("Last completion date: %s\n", state.Completion.LastCompletionDate)
	fmt.Printf("Today: %s (%s)\n", state.Today, state.Phase)
	return nil
}
