package db

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// テーブルが空のときだけサンプルデータを入れる
func SeedSampleData(ctx context.Context, gdb *gorm.DB) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Category{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(sampleCategories()).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}

		if err := tx.Model(&model.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			var cats []model.Category
			if err := tx.Order("id asc").Find(&cats).Error; err != nil {
				return err
			}
			byName := make(map[string]int64, len(cats))
			for _, c := range cats {
				byName[c.Name] = c.ID
			}
			products := sampleProducts(byName)
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
		}

		if err := tx.Model(&model.Slide{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(sampleSlides()).Error; err != nil {
				return fmt.Errorf("seed slides: %w", err)
			}
		}
		return nil
	})
}

func sampleCategories() *[]model.Category {
	return &[]model.Category{
		{Name: "Electronics", Description: "Electronic devices and accessories"},
		{Name: "Mobile", Description: "Smartphones, tablets and mobile accessories"},
		{Name: "Clothing", Description: "Fashion and apparel"},
		{Name: "Books", Description: "Books and educational materials"},
		{Name: "Home & Garden", Description: "Home improvement and gardening items"},
	}
}

func sampleProducts(categoryIDs map[string]int64) []model.Product {
	const placeholder = "/images/placeholder-300x300.svg"
	p := func(name, desc, price string, stock int64, category string) model.Product {
		var catID *int64
		if id, ok := categoryIDs[category]; ok {
			catID = &id
		}
		return model.Product{
			Name:          name,
			Description:   desc,
			Price:         decimal.RequireFromString(price),
			StockQuantity: stock,
			CategoryID:    catID,
			ImageURL:      placeholder,
		}
	}
	return []model.Product{
		p("Smartphone", "Android smartphone", "599.99", 50, "Electronics"),
		p("Laptop", "Laptop for work and gaming", "1299.99", 25, "Electronics"),
		p("Tablet", "Tablet for work and creativity", "599.99", 20, "Mobile"),
		p("Wireless Earbuds", "Earbuds with noise cancellation", "249.99", 100, "Mobile"),
		p("Phone Case", "Protective case for smartphones", "29.99", 200, "Mobile"),
		p("T-Shirt", "Cotton t-shirt", "19.99", 100, "Clothing"),
		p("Jeans", "Classic blue jeans", "79.99", 75, "Clothing"),
		p("Programming Book", "Learn web development", "39.99", 30, "Books"),
		p("Plant Pot", "Ceramic plant pot", "24.99", 40, "Home & Garden"),
	}
}

func sampleSlides() *[]model.Slide {
	return &[]model.Slide{
		{ImageURL: "/images/slide-1.svg", Title: "New arrivals", Subtitle: "Fresh picks this week", DisplayOrder: 1, IsActive: true},
		{ImageURL: "/images/slide-2.svg", Title: "Mobile deals", Subtitle: "Phones and accessories", DisplayOrder: 2, IsActive: true},
		{ImageURL: "/images/slide-3.svg", Title: "Back to school", Subtitle: "Books and more", DisplayOrder: 3, IsActive: true},
	}
}
