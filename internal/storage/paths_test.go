package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageKeys(t *testing.T) {
	assert.Equal(t, "images/user/u-1/u-1.png", UserImageKey("u-1", "png"))
	assert.Equal(t, "images/user/u-1/u-1.jpg", UserImageKey("u-1", ".JPG"))
	assert.Equal(t, "images/post/p-9.jpeg", PostImageKey("p-9", ".jpeg"))
}

func TestPrefixesMatchOnlyOwnObjects(t *testing.T) {
	assert.True(t, strings.HasPrefix(PostImageKey("p-9", "png"), PostImagePrefix("p-9")))
	assert.False(t, strings.HasPrefix(PostImageKey("p-90", "png"), PostImagePrefix("p-9")))
	assert.True(t, strings.HasPrefix(UserImageKey("u-1", "png"), UserImagePrefix("u-1")))
	assert.False(t, strings.HasPrefix(UserImageKey("u-10", "png"), UserImagePrefix("u-1")))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/books/images/post/p-9.png",
		PublicURL("https://storage.googleapis.com/", "books", "images/post/p-9.png"))
}
