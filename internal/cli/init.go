package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	// Seeds the default bedtime and today's checklist.
	ctx.Tracker.LoadState()

	fmt.Printf("Initialized sleepr storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
