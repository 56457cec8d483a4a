package bootstrap

import (
	"context"
	"testing"

	"bookmarket/internal/config"
	"bookmarket/internal/models"
	"bookmarket/internal/seed"
	"bookmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo_RefusesProduction(t *testing.T) {
	err := seedDemo(context.Background(), &config.Config{Env: "production"}, nil, seed.Options{NumUsers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing")
}

func TestSeedDemo_Development(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	err := seedDemo(context.Background(), &config.Config{Env: "development"}, db,
		seed.Options{NumUsers: 2, ListingsPerUser: 1})
	require.NoError(t, err)

	var posts int64
	require.NoError(t, db.Model(&models.TransactionPost{}).Count(&posts).Error)
	assert.EqualValues(t, 2, posts)
}
