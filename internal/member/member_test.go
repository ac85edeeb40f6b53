package member_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fynance/internal/member"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		addedBy string
		want    string
	}{
		{name: "Empty", addedBy: "", want: "Unknown"},
		{name: "Email", addedBy: "siti.rahma@example.com", want: "Siti Rahma"},
		{name: "EmailUnderscore", addedBy: "budi_santoso@mail.id", want: "Budi Santoso"},
		{name: "ProviderUID", addedBy: "Xk2Lr9QpZt7VbN4mWc1sHd", want: "User"},
		{name: "DisplayName", addedBy: "Ayah", want: "Ayah"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, member.DisplayName(tt.addedBy))
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name    string
		addedBy string
		want    string
	}{
		{name: "Empty", addedBy: "", want: "U"},
		{name: "TwoWordEmail", addedBy: "siti.rahma@example.com", want: "SR"},
		{name: "OneWordEmail", addedBy: "budi@example.com", want: "BU"},
		{name: "Name", addedBy: "ibu", want: "IB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, member.Initials(tt.addedBy))
		})
	}
}
