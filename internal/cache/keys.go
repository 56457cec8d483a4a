package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	profileKeyPrefix       = "profile:%s"
	openListingsVersionKey = "listings:open:version"
	openListingsKeyFormat  = "listings:open:v%d:p%d:l%d"
)

const (
	ProfileTTL      = 5 * time.Minute
	OpenListingsTTL = time.Minute
)

func ProfileKey(userID string) string {
	return fmt.Sprintf(profileKeyPrefix, userID)
}

// OpenListingsKey names one cached page of open listings under the current
// listings version, so bumping the version orphans every cached page.
func OpenListingsKey(ctx context.Context, page, limit int) string {
	return fmt.Sprintf(openListingsKeyFormat, listingsVersion(ctx), page, limit)
}

func listingsVersion(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	v, err := client.Get(ctx, openListingsVersionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

// InvalidateOpenListings bumps the listings version.
func InvalidateOpenListings(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, openListingsVersionKey)
	}
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, userID string) {
	Invalidate(ctx, ProfileKey(userID))
}
