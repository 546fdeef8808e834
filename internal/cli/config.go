package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/sleepr/internal/config"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Show the effective application config." default:"1"`
	Init ConfigInitCmd `cmd:"" help:"Write the effective config to config.yaml."`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	fmt.Printf("Config file:        %s\n", ctx.ConfigPath)
	fmt.Printf("timezone:           %s\n", cfg.Timezone)
	fmt.Printf("recurrence:         %s\n", cfg.Recurrence)
	fmt.Printf("debounce:           %s\n", cfg.Debounce())
	fmt.Printf("grace window:       %s\n", cfg.GraceWindow())
	fmt.Printf("staleness:          %s\n", cfg.Staleness())
	fmt.Printf("dispatch interval:  %s\n", cfg.DispatchInterval())
	fmt.Printf("notifier.sender:    %s\n", cfg.Notifier.Sender)
	fmt.Printf("paywall.base_url:   %s\n", cfg.Paywall.BaseURL)
	fmt.Printf("paywall.timeout:    %s\n", cfg.PaywallTimeout())
	return nil
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *ConfigInitCmd) Run(ctx *Context) error {
	if _, err := os.Stat(ctx.ConfigPath); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", ctx.ConfigPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.Save(ctx.ConfigPath, ctx.Config); err != nil {
		return err
	}
	fmt.Printf("✓ Config written to %s\n", ctx.ConfigPath)
	return nil
}
