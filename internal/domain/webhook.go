package domain

import (
	"strings"
	"time"
)

// Webhook topics the app subscribes to or must answer
const (
	TopicShopRedact             = "shop/redact"
	TopicCustomersRedact        = "customers/redact"
	TopicCustomersDataRequest   = "customers/data_request"
	TopicAppUninstalled         = "app/uninstalled"
	TopicAppSubscriptionsUpdate = "app_subscriptions/update"
	TopicProductsUpdate         = "products/update"
	TopicProductsDelete         = "products/delete"
)

// WebhookEvent is a verified webhook delivery
type WebhookEvent struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Shop       string    `json:"shop"`
	Payload    []byte    `json:"payload"`
	Verified   bool      `json:"verified"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// CarriesCustomerData reports whether deliveries of the topic include customer personal data
func CarriesCustomerData(topic string) bool {
	return strings.HasPrefix(topic, "customers/")
}
