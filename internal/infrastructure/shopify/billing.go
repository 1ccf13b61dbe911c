package shopify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopify-quantity-rules/internal/domain"

	"github.com/shopspring/decimal"
)

const appSubscriptionFields = `id name status trialDays test currentPeriodEnd createdAt`

const appSubscriptionCreateMutation = `mutation AppSubscriptionCreate($name: String!, $lineItems: [AppSubscriptionLineItemInput!]!, $returnUrl: URL!, $trialDays: Int, $test: Boolean) {
  appSubscriptionCreate(name: $name, returnUrl: $returnUrl, lineItems: $lineItems, trialDays: $trialDays, test: $test) {
    userErrors { field message }
    confirmationUrl
    appSubscription { ` + appSubscriptionFields + ` }
  }
}`

const activeSubscriptionsQuery = `query ActiveSubscriptions {
  currentAppInstallation {
    activeSubscriptions { ` + appSubscriptionFields + ` }
  }
}`

const appSubscriptionCancelMutation = `mutation AppSubscriptionCancel($id: ID!) {
  appSubscriptionCancel(id: $id) {
    userErrors { field message }
    appSubscription { ` + appSubscriptionFields + ` }
  }
}`

// UserError is one entry of a GraphQL mutation's userErrors
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrorsError is returned when a billing mutation reports userErrors
type UserErrorsError struct {
	Action string
	Errors []UserError
}

func (e *UserErrorsError) Error() string {
	if e == nil {
		return "shopify user errors"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		message := strings.TrimSpace(err.Message)
		if len(err.Field) == 0 {
			parts = append(parts, message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(err.Field, "."), message))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("shopify %s failed with user errors", e.Action)
	}
	return fmt.Sprintf("shopify %s failed: %s", e.Action, strings.Join(parts, "; "))
}

func userErrorsToError(action string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	return &UserErrorsError{Action: action, Errors: errs}
}

type gqlAppSubscription struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	TrialDays        int        `json:"trialDays"`
	Test             bool       `json:"test"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	CreatedAt        *time.Time `json:"createdAt"`
}

func (s *gqlAppSubscription) toDomain() *domain.AppSubscription {
	if s == nil {
		return nil
	}
	return &domain.AppSubscription{
		ID:               s.ID,
		Name:             s.Name,
		Status:           domain.SubscriptionStatus(s.Status),
		TrialDays:        s.TrialDays,
		Test:             s.Test,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		CreatedAt:        s.CreatedAt,
	}
}

type appSubscriptionCreateResponse struct {
	AppSubscriptionCreate struct {
		UserErrors      []UserError         `json:"userErrors"`
		ConfirmationURL string              `json:"confirmationUrl"`
		AppSubscription *gqlAppSubscription `json:"appSubscription"`
	} `json:"appSubscriptionCreate"`
}

type activeSubscriptionsResponse struct {
	CurrentAppInstallation struct {
		ActiveSubscriptions []gqlAppSubscription `json:"activeSubscriptions"`
	} `json:"currentAppInstallation"`
}

type appSubscriptionCancelResponse struct {
	AppSubscriptionCancel struct {
		UserErrors      []UserError         `json:"userErrors"`
		AppSubscription *gqlAppSubscription `json:"appSubscription"`
	} `json:"appSubscriptionCancel"`
}

type moneyInput struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

type recurringPricingInput struct {
	Price    moneyInput `json:"price"`
	Interval string     `json:"interval"`
}

type lineItemInput struct {
	Plan struct {
		AppRecurringPricingDetails recurringPricingInput `json:"appRecurringPricingDetails"`
	} `json:"plan"`
}

// subscriptionVariables builds the appSubscriptionCreate input for a plan
func subscriptionVariables(plan domain.SubscriptionPlan, returnURL string) map[string]interface{} {
	var item lineItemInput
	item.Plan.AppRecurringPricingDetails = recurringPricingInput{
		Price:    moneyInput{Amount: plan.Price, CurrencyCode: plan.Currency},
		Interval: string(plan.Interval),
	}

	vars := map[string]interface{}{
		"name":      plan.Name,
		"returnUrl": returnURL,
		"lineItems": []lineItemInput{item},
		"test":      plan.Test,
	}
	if plan.TrialDays > 0 {
		vars["trialDays"] = plan.TrialDays
	}
	return vars
}

// Billing API (GraphQL)

func (c *client) CreateAppSubscription(ctx context.Context, shopDomain string, accessToken string, plan domain.SubscriptionPlan, returnURL string) (*domain.AppSubscription, string, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, "", err
	}

	var resp appSubscriptionCreateResponse
	if err := client.GraphQL.Query(ctx, appSubscriptionCreateMutation, subscriptionVariables(plan, returnURL), &resp); err != nil {
		return nil, "", fmt.Errorf("failed to create app subscription: %w", err)
	}

	result := resp.AppSubscriptionCreate
	if err := userErrorsToError("appSubscriptionCreate", result.UserErrors); err != nil {
		return nil, "", err
	}
	if result.AppSubscription == nil || result.ConfirmationURL == "" {
		return nil, "", fmt.Errorf("failed to create app subscription: empty response")
	}

	c.logger.Info().
		Str("shop", shopDomain).
		Str("subscriptionId", result.AppSubscription.ID).
		Str("status", result.AppSubscription.Status).
		Msg("Created app subscription")

	return result.AppSubscription.toDomain(), result.ConfirmationURL, nil
}

func (c *client) ActiveSubscriptions(ctx context.Context, shopDomain string, accessToken string) ([]domain.AppSubscription, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	var resp activeSubscriptionsResponse
	if err := client.GraphQL.Query(ctx, activeSubscriptionsQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to query active subscriptions: %w", err)
	}

	subs := make([]domain.AppSubscription, 0, len(resp.CurrentAppInstallation.ActiveSubscriptions))
	for i := range resp.CurrentAppInstallation.ActiveSubscriptions {
		subs = append(subs, *resp.CurrentAppInstallation.ActiveSubscriptions[i].toDomain())
	}
	return subs, nil
}

func (c *client) CancelAppSubscription(ctx context.Context, shopDomain string, accessToken string, subscriptionID string) (*domain.AppSubscription, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	var resp appSubscriptionCancelResponse
	vars := map[string]interface{}{"id": subscriptionID}
	if err := client.GraphQL.Query(ctx, appSubscriptionCancelMutation, vars, &resp); err != nil {
		return nil, fmt.Errorf("failed to cancel app subscription: %w", err)
	}

	result := resp.AppSubscriptionCancel
	if err := userErrorsToError("appSubscriptionCancel", result.UserErrors); err != nil {
		return nil, err
	}
	if result.AppSubscription == nil {
		return &domain.AppSubscription{ID: subscriptionID, Status: domain.SubscriptionCancelled}, nil
	}

	return result.AppSubscription.toDomain(), nil
}
