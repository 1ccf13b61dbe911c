package domain

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainTypesHaveNoStorageTags(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "rule", value: Rule{}},
		{name: "settings", value: Settings{}},
		{name: "shop", value: Shop{}},
		{name: "prep shipment", value: PrepShipment{}},
		{name: "webhook event", value: WebhookEvent{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := reflect.TypeOf(tt.value)
			for i := 0; i < typ.NumField(); i++ {
				field := typ.Field(i)
				_, ok := field.Tag.Lookup("bson")
				assert.False(t, ok, "%s.%s has a bson tag; map it in the repository entity instead", typ.Name(), field.Name)
			}
		})
	}
}
