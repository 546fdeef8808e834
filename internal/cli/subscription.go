package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/sleepr/internal/keyring"
	"github.com/julianstephens/sleepr/internal/paywall"
)

type SubscriptionCmd struct {
	Status    SubscriptionStatusCmd    `cmd:"" help:"Show subscription status." default:"1"`
	Subscribe SubscriptionSubscribeCmd `cmd:"" help:"Open the subscription offer."`
	Key       struct {
		Set SubscriptionKeySetCmd `cmd:"" help:"Store the subscription service API key in the OS keyring."`
	} `cmd:"" help:"Manage the subscription service API key."`
}

type SubscriptionStatusCmd struct{}

func (c *SubscriptionStatusCmd) Run(ctx *Context) error {
	if ctx.Gate.IsSubscribed(context.Background()) {
		fmt.Println("★ Premium: active")
		return nil
	}
	fmt.Println("Premium: inactive")
	if ctx.Config.Paywall.BaseURL == "" {
		fmt.Println("No subscription service configured (paywall.base_url).")
	}
	return nil
}

type SubscriptionSubscribeCmd struct {
	Placement string `help:"Paywall placement to show." default:"settings"`
}

func (c *SubscriptionSubscribeCmd) Run(ctx *Context) error {
	runCtx, cancel := withTimeout(ctx.Config.PaywallTimeout())
	defer cancel()

	if err := ctx.Gate.Present(runCtx, c.Placement); err != nil {
		if errors.Is(err, paywall.ErrNotConfigured) {
			return fmt.Errorf("%w: set paywall.base_url in config.yaml", err)
		}
		return err
	}
	return nil
}

type SubscriptionKeySetCmd struct {
	Key string `arg:"" help:"API key."`
}

func (c *SubscriptionKeySetCmd) Run(ctx *Context) error {
	if err := keyring.SetPaywallAPIKey(c.Key); err != nil {
		return err
	}
	fmt.Println("✓ API key stored in the OS keyring")
	return nil
}
