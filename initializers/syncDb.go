package initializers

import (
	"log"

	"github.com/Njagi/sokoni-api/models"
)

func SyncDatabase() {
	DB.AutoMigrate(
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductSpecs{},
		&models.Order{},
		&models.OrderItem{},
	)
	log.Println("Database synced successfully.")
}
