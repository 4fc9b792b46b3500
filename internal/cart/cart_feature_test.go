package cart_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/fifilen/foodapp/internal/cart"
	"github.com/fifilen/foodapp/internal/domain"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	store   *cart.Store
	lastErr error
}

func (c *cartTestContext) reset() {
	c.store = nil
	c.lastErr = nil
}

func (c *cartTestContext) anEmptyCartWithPolicy(name string) error {
	policy, err := cart.ParsePolicy(name)
	if err != nil {
		return err
	}
	c.store = cart.NewStore(policy)
	return nil
}

func (c *cartTestContext) iAddOfProductPricedFromRestaurant(qty int, id, price string, restaurantID int64) error {
	c.lastErr = c.store.AddItem(domain.Product{
		ID:           id,
		Name:         id,
		UnitPrice:    decimal.RequireFromString(price),
		RestaurantID: restaurantID,
	}, qty)
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfProductTo(id string, qty int) error {
	return c.store.UpdateQuantity(id, qty)
}

func (c *cartTestContext) iClearTheCart() error {
	c.store.Clear()
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.store.Lines()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(id string, qty int) error {
	for _, line := range c.store.Lines() {
		if line.ProductID == id {
			if line.Quantity != qty {
				return fmt.Errorf("expected quantity %d for %s, got %d", qty, id, line.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("product %s not in cart", id)
}

func (c *cartTestContext) theItemCountIs(n int) error {
	if got := c.store.ItemCount(); got != n {
		return fmt.Errorf("expected item count %d, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theTotalPriceIs(total string) error {
	want := decimal.RequireFromString(total)
	if got := c.store.TotalPrice(); !got.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (c *cartTestContext) theCartHasNoRestaurant() error {
	if id, ok := c.store.RestaurantID(); ok {
		return fmt.Errorf("expected no restaurant, got %d", id)
	}
	return nil
}

func (c *cartTestContext) theCartRestaurantIs(want int64) error {
	id, ok := c.store.RestaurantID()
	if !ok || id != want {
		return fmt.Errorf("expected restaurant %d, got %d (ok=%v)", want, id, ok)
	}
	return nil
}

func (c *cartTestContext) theLastAddFailedWithARestaurantMismatch() error {
	if !errors.Is(c.lastErr, cart.ErrRestaurantMismatch) {
		return fmt.Errorf("expected restaurant mismatch, got %v", c.lastErr)
	}
	return nil
}

func (c *cartTestContext) theLastAddSucceeded() error {
	if c.lastErr != nil {
		return fmt.Errorf("expected success, got %v", c.lastErr)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart with policy "([^"]*)"$`, tc.anEmptyCartWithPolicy)

	// When steps
	ctx.Step(`^I add (\d+) of product "([^"]*)" priced ([0-9.]+) from restaurant (\d+)$`, tc.iAddOfProductPricedFromRestaurant)
	ctx.Step(`^I set the quantity of product "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfProductTo)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines$`, tc.theCartHasLines)
	ctx.Step(`^product "([^"]*)" has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the item count is (\d+)$`, tc.theItemCountIs)
	ctx.Step(`^the total price is ([0-9.]+)$`, tc.theTotalPriceIs)
	ctx.Step(`^the cart has no restaurant$`, tc.theCartHasNoRestaurant)
	ctx.Step(`^the cart restaurant is (\d+)$`, tc.theCartRestaurantIs)
	ctx.Step(`^the last add failed with a restaurant mismatch$`, tc.theLastAddFailedWithARestaurantMismatch)
	ctx.Step(`^the last add succeeded$`, tc.theLastAddSucceeded)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
