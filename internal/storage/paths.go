package storage

import (
	"fmt"
	"strings"
)

// UserImagePrefix is the key prefix holding every avatar of one user.
func UserImagePrefix(userID string) string {
	return fmt.Sprintf("images/user/%s/", userID)
}

// UserImageKey is images/user/<id>/<id>.<ext>.
func UserImageKey(userID, ext string) string {
	return UserImagePrefix(userID) + userID + "." + normalizeExt(ext)
}

// PostImagePrefix matches the image of one listing whatever its extension.
func PostImagePrefix(postID string) string {
	return fmt.Sprintf("images/post/%s.", postID)
}

// PostImageKey is images/post/<id>.<ext>.
func PostImageKey(postID, ext string) string {
	return PostImagePrefix(postID) + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
