package chipotle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UI-driven fallback. These flows replicate add-to-cart and checkout by
// clicking through the live page instead of calling the API, for the
// parts the documented API cannot cover (the submission endpoint wants
// anti-bot headers the REST path cannot produce). UI failures are
// terminal for the call; nothing here retries.

const (
	uiWait     = 30 * time.Second
	submitWait = 60 * time.Second

	mealNameInput  = `[aria-label="Enter the Meal Name"]`
	saveMealButton = `.button.save.size-md.type-primary`
	utensilsToggle = `[aria-label="Include Napkins & Utensils"]`
)

// CategoryResolver maps an entree to the storefront category group that
// has to be opened before the entree can be clicked.
type CategoryResolver interface {
	Category(entree OrderEntree, pageHTML string) (string, error)
}

// displayNameCategories guesses the category from the second word of the
// entree's display name ("Chicken Burrito" -> "Burrito") and widens the
// guess against the group names actually present in the page. A known
// fragility, kept behind the interface so an explicit mapping can
// replace it.
type displayNameCategories struct{}

func (displayNameCategories) Category(entree OrderEntree, pageHTML string) (string, error) {
	words := strings.Fields(entree.MenuItemName)
	if len(words) < 2 {
		return "", fmt.Errorf("cannot derive category from entree name %q", entree.MenuItemName)
	}
	hint := words[1]

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return hint, nil
	}
	match := hint
	doc.Find("[data-qa-group-name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := s.AttrOr("data-qa-group-name", "")
		if strings.Contains(name, hint) {
			match = name
			return false
		}
		return true
	})
	return match, nil
}

func itemSelector(menuItemID string) string {
	return fmt.Sprintf(`[data-qa-item-id=%q]`, menuItemID)
}

// uiClick waits for the element and clicks it, converting any miss into
// the selector-not-found taxonomy.
func (c *Client) uiClick(selector string) error {
	if err := c.page.WaitVisible(selector, uiWait); err != nil {
		return &SelectorNotFoundError{Selector: selector, Cause: err}
	}
	if err := c.page.Click(selector); err != nil {
		return &SelectorNotFoundError{Selector: selector, Cause: err}
	}
	return nil
}

// AddToCartViaUI builds one meal through the storefront page: opens the
// entree's category, selects the entree and its contents (applying
// customizations through each content's kebab menu), increments side and
// drink quantities, names the meal and saves it. With utensils set it
// also toggles napkins and utensils and waits for the resulting network
// call to land before returning.
func (c *Client) AddToCartViaUI(ctx context.Context, entree OrderEntree, sides, drinks []OrderContent, mealName string, utensils bool) error {
	ctx, span := tracer.Start(ctx, "AddToCartViaUI")
	defer span.End()

	if err := c.page.Navigate(c.storefrontURL); err != nil {
		return fmt.Errorf("open storefront: %w", err)
	}

	pageHTML, err := c.page.OuterHTML()
	if err != nil {
		return err
	}
	category, err := c.categories.Category(entree, pageHTML)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "resolved entree category",
		"entree", entree.MenuItemName, "category", category)

	categorySelector := fmt.Sprintf(`[data-qa-group-name*=%q]`, category)
	if err := c.uiClick(categorySelector); err != nil {
		return err
	}
	if err := c.uiClick(itemSelector(entree.MenuItemID)); err != nil {
		return err
	}

	for _, content := range entree.Contents {
		if err := c.uiClick(itemSelector(content.MenuItemID)); err != nil {
			return err
		}
		if content.CustomizationID != nil {
			kebab := itemSelector(content.MenuItemID) + " .kebab-menu-container"
			if err := c.uiClick(kebab); err != nil {
				return err
			}
			// customization ids are zero-based, the menu entries are not
			customization := fmt.Sprintf(".customizations :nth-child(%d)", *content.CustomizationID+1)
			if err := c.uiClick(customization); err != nil {
				return err
			}
		}
	}

	for _, group := range [][]OrderContent{sides, drinks} {
		for _, item := range group {
			if err := c.uiClick(itemSelector(item.MenuItemID)); err != nil {
				return err
			}
			increment := itemSelector(item.MenuItemID) + ` [aria-label="Increment"]`
			for q := 1; q < item.Quantity; q++ {
				if err := c.uiClick(increment); err != nil {
					return err
				}
			}
		}
	}

	if err := c.uiClick(`[meal-ids="complete-meal"]`); err != nil {
		return err
	}
	if err := c.page.WaitVisible(saveMealButton, uiWait); err != nil {
		return &SelectorNotFoundError{Selector: saveMealButton, Cause: err}
	}
	if err := c.page.TypeSlow(mealNameInput, mealName, typeDelay); err != nil {
		return &SelectorNotFoundError{Selector: mealNameInput, Cause: err}
	}
	if err := c.uiClick(saveMealButton); err != nil {
		return err
	}
	if err := c.page.WaitVisible(".bagCheckout", uiWait); err != nil {
		return &SelectorNotFoundError{Selector: ".bagCheckout", Cause: err}
	}

	if utensils {
		_, err := c.page.Expect(func(url, method string) bool {
			return strings.Contains(url, "nonFoodItems") && method == "POST"
		}, uiWait, func() error {
			return c.uiClick(utensilsToggle)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// UIOrderResult is the submission response scraped off the wire by the
// UI checkout: parsed JSON when the body parses as such, raw text
// otherwise.
type UIOrderResult struct {
	Status int
	JSON   json.RawMessage
	Text   string
}

// CheckoutViaUI opens the cart, picks the slot matching the given ISO
// pickup time, selects the saved card by its last four digits, submits,
// and returns whatever the submission endpoint answered.
func (c *Client) CheckoutViaUI(ctx context.Context, pickupTime, cardLastFour string) (*UIOrderResult, error) {
	ctx, span := tracer.Start(ctx, "CheckoutViaUI")
	defer span.End()

	if err := c.page.Navigate(c.storefrontURL); err != nil {
		return nil, fmt.Errorf("open storefront: %w", err)
	}
	if err := c.uiClick(".bag-container"); err != nil {
		return nil, err
	}
	if err := c.uiClick(".checkout"); err != nil {
		return nil, err
	}

	label, err := pickupSlotLabel(pickupTime)
	if err != nil {
		return nil, err
	}
	slot := fmt.Sprintf(`//*[normalize-space() = '%s']`, label)
	if err := c.page.WaitVisibleXPath(slot, uiWait); err != nil {
		return nil, &InvalidTimeSlotError{Label: label}
	}
	if err := c.page.ClickXPath(slot); err != nil {
		// collapsed slot lists hide the control behind an expander
		if err := c.uiClick(".expander-container"); err != nil {
			return nil, &InvalidTimeSlotError{Label: label}
		}
		if err := c.page.ClickXPath(slot); err != nil {
			return nil, &InvalidTimeSlotError{Label: label}
		}
	}

	card := fmt.Sprintf(`//div[contains(text(), '%s')]/parent::*/parent::*/div[@role='radio']`, cardLastFour)
	if err := c.page.ClickXPath(card); err != nil {
		return nil, &SelectorNotFoundError{Selector: card, Cause: err}
	}

	res, err := c.page.Expect(func(url, method string) bool {
		return strings.Contains(url, "/submit") && method == "POST"
	}, submitWait, func() error {
		return c.uiClick(".submit-btn")
	})
	if err != nil {
		return nil, err
	}

	out := &UIOrderResult{Status: res.Status}
	if json.Valid(res.Body) {
		out.JSON = append(json.RawMessage(nil), res.Body...)
	} else {
		out.Text = res.Text()
	}
	return out, nil
}

// pickupSlotLabel renders an ISO pickup time the way the checkout page
// labels its slots: 12-hour clock with zero-padded minutes and an am/pm
// suffix. Hours 0 and 12 both render as 12.
func pickupSlotLabel(pickupTime string) (string, error) {
	t, err := time.Parse("2006-01-02T15:04:05", pickupTime)
	if err != nil {
		return "", fmt.Errorf("pickup time %q is not in YYYY-MM-DDTHH:MM:SS form: %w", pickupTime, err)
	}

	suffix := "am"
	if t.Hour() >= 12 {
		suffix = "pm"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), suffix), nil
}
