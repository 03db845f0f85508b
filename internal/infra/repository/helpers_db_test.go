package repository_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// テストごとに独立したインメモリ SQLite を作る
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1)),
	}

	gdb, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) model.User {
	t.Helper()
	u := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func createProduct(t *testing.T, gdb *gorm.DB, name string, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func countRows(t *testing.T, gdb *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(m).Count(&n).Error)
	return n
}
