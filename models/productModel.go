package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductSpecs struct {
	gorm.Model
	Label     string `json:"label" binding:"required"`
	Value     string `json:"value" binding:"required"`
	ProductID uint   `json:"productId" binding:"required"`
}

type ProductImage struct {
	gorm.Model
	Url       string `json:"url"`
	ProductID uint   `json:"productId"`
}

type Product struct {
	gorm.Model
	Brand          string         `json:"brand" binding:"required"`
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description" binding:"required"`
	Price          float64        `json:"price" binding:"required"`
	Category       string         `json:"category" binding:"required"`
	Colors         datatypes.JSON `json:"colors"`
	Specifications []ProductSpecs `json:"specifications" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images         []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
