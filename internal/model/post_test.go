package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostHasManagedImage(t *testing.T) {
	assert.True(t, Post{TopImage: "/images/1700000000000_cat.png"}.HasManagedImage())
	assert.False(t, Post{TopImage: "https://picsum.photos/seed/post1/600/400"}.HasManagedImage())
	assert.False(t, Post{}.HasManagedImage())
}
