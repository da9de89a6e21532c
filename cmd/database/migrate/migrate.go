package migration

import (
	entities2 "Apoteka-Backend/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities2.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Client{}); err != nil {
		log.Fatalf("Error migrating client database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Pharmacist{}); err != nil {
		log.Fatalf("Error migrating pharmacist database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Receipt{}); err != nil {
		log.Fatalf("Error migrating receipt database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Item{}); err != nil {
		log.Fatalf("Error migrating item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.ReceiptItem{}); err != nil {
		log.Fatalf("Error migrating receipt item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.StarTransaction{}); err != nil {
		log.Fatalf("Error migrating star transaction database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.ShopItem{}); err != nil {
		log.Fatalf("Error migrating shop item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.ShopPurchase{}); err != nil {
		log.Fatalf("Error migrating shop purchase database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
