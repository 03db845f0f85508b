package model

// AutoMigrate 対象（FK の都合で親テーブルから）
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&CartLine{},
		&Order{},
		&OrderItem{},
		&Slide{},
		&AuditLog{},
		&InventoryAdjustment{},
	}
}
