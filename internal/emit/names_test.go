package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascalCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"order_detail", "OrderDetail"},
		{"order-detail", "OrderDetail"},
		{"ORDER", "ORDER"},
		{"orderDetail", "OrderDetail"},
		{"OrderDetail", "OrderDetail"},
		{"user profile", "UserProfile"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PascalCase(tt.in), tt.in)
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Order", "Orders"},
		{"Category", "Categories"},
		{"Day", "Days"},
		{"Address", "Addresses"},
		{"Box", "Boxes"},
		{"Match", "Matches"},
		{"Person", "People"},
		{"Child", "Children"},
		{"Status", "Status"},
		{"Shelf", "Shelves"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.in), tt.in)
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Orders", "Order"},
		{"Categories", "Category"},
		{"Addresses", "Address"},
		{"Boxes", "Box"},
		{"Matches", "Match"},
		{"People", "Person"},
		{"Children", "Child"},
		{"Status", "Status"},
		{"Address", "Address"},
		{"Order", "Order"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Singularize(tt.in), tt.in)
	}
}

func TestEntityName(t *testing.T) {
	assert.Equal(t, "OrderDetail", EntityName("order_details"))
	assert.Equal(t, "User", EntityName("users"))
	assert.Equal(t, "StudentCourse", EntityName("StudentCourse"))
}
