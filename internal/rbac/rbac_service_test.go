package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_Enforce(t *testing.T) {
	svc, err := NewService()
	assert.NoError(t, err)

	tests := []struct {
		name    string
		req     EnforceRequest
		allowed bool
	}{
		{"admin reads attendance", EnforceRequest{Role: "admin", Resource: "attendance", Action: "read"}, true},
		{"admin exports attendance", EnforceRequest{Role: "admin", Resource: "attendance", Action: "export"}, true},
		{"admin cannot delete", EnforceRequest{Role: "admin", Resource: "attendance", Action: "delete"}, false},
		{"unknown role denied", EnforceRequest{Role: "guest", Resource: "attendance", Action: "read"}, false},
		{"unknown resource denied", EnforceRequest{Role: "admin", Resource: "users", Action: "read"}, false},
		{"empty role denied", EnforceRequest{Resource: "attendance", Action: "read"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.Enforce(tt.req)
			assert.NoError(t, err)
			assert.Equal(t, tt.allowed, ok)
		})
	}
}
