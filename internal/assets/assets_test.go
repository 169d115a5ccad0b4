package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaming_IsPreMinified(t *testing.T) {
	n := Naming{Marker: ".min."}
	assert.True(t, n.IsPreMinified("vendor.min.js"))
	assert.True(t, n.IsPreMinified("lib/jquery.min.js"))
	assert.False(t, n.IsPreMinified("main.css"))
	assert.False(t, n.IsPreMinified("min.js"))
	assert.False(t, n.IsPreMinified("admin.js"))
	assert.False(t, Naming{}.IsPreMinified("vendor.min.js"))
}

func TestNaming_MinifiedName(t *testing.T) {
	n := Naming{Marker: ".min."}
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"main.css", "main.min.css", true},
		{"theme/dark.css", "theme/dark.min.css", true},
		{"Upper.CSS", "Upper.min.CSS", true},
		{"main.less", "", false},
		{".css", "", false},
		{"theme/.css", "", false},
	}
	for _, tt := range tests {
		got, ok := n.MinifiedName(tt.name, ".css")
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestNaming_MinifiedNameIsStable(t *testing.T) {
	n := Naming{Marker: ".min."}
	first, _ := n.MinifiedName("main.css", ".css")
	second, _ := n.MinifiedName("main.css", ".css")
	assert.Equal(t, first, second)
	assert.True(t, n.IsPreMinified(first))
}

func TestCollector_OrderAndDuplicates(t *testing.T) {
	c := NewCollector()
	c.Append("js/a.js")
	c.Append("js/b.js")
	c.Append("js/a.js")

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"js/a.js", "js/b.js", "js/a.js"}, c.Paths())

	p := c.Paths()
	p[0] = "mutated"
	assert.Equal(t, "js/a.js", c.Paths()[0], "Paths returns a copy")
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Paths())
}
