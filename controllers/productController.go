package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Njagi/sokoni-api/initializers"
	"github.com/Njagi/sokoni-api/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const productCacheTTL = 5 * time.Minute

type productListing struct {
	Products []models.Product `json:"products"`
	Metadata gin.H            `json:"metadata"`
}

// CreateProduct adds a product to the catalog. Admin only.
func CreateProduct(ctx *gin.Context) {
	var product models.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if err := initializers.DB.Create(&product).Error; err != nil {
		log.Println("Product creation error:", err)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	invalidateProductCache(ctx.Request.Context())
	sendSuccess(ctx, http.StatusCreated, gin.H{"data": product})
}

// CreateProductSpecs attaches a specification row to an existing product.
func CreateProductSpecs(ctx *gin.Context) {
	var spec models.ProductSpecs
	if err := ctx.ShouldBindJSON(&spec); err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var product models.Product
	if err := initializers.DB.First(&product, spec.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendError(ctx, http.StatusNotFound, "product not found")
		} else {
			log.Println("Product lookup error:", err)
			sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		}
		return
	}

	if err := initializers.DB.Create(&spec).Error; err != nil {
		log.Println("Product specs creation error:", err)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	invalidateProductCache(ctx.Request.Context())
	sendSuccess(ctx, http.StatusCreated, gin.H{"data": spec})
}

func getS3Uploader() (*manager.Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return manager.NewUploader(s3.NewFromConfig(cfg)), nil
}

// UploadProductImages pushes multipart image files to S3 and records their
// public URLs against the product.
func UploadProductImages(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		sendError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		sendError(ctx, http.StatusBadRequest, "no files uploaded")
		return
	}

	productId, err := strconv.Atoi(ctx.PostForm("productId"))
	if err != nil || productId <= 0 {
		sendError(ctx, http.StatusBadRequest, "invalid productId")
		return
	}

	var product models.Product
	if err := initializers.DB.First(&product, productId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendError(ctx, http.StatusNotFound, "product not found")
		} else {
			log.Println("Product lookup error:", err)
			sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		}
		return
	}

	uploader, err := getS3Uploader()
	if err != nil {
		log.Println("AWS config error:", err)
		sendError(ctx, http.StatusInternalServerError, "failed to configure uploads")
		return
	}

	bucket := os.Getenv("S3_BUCKET")
	var uploadedUrls []string
	var failedUploads []string

	for _, file := range files {
		f, openErr := file.Open()
		if openErr != nil {
			log.Printf("Error opening file %s: %v", file.Filename, openErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		key := fmt.Sprintf("products/%d/%s%s", productId, uuid.NewString(), filepath.Ext(file.Filename))
		result, uploadErr := uploader.Upload(ctx.Request.Context(), &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        f,
			ACL:         "public-read",
			ContentType: aws.String(file.Header.Get("Content-Type")),
		})
		f.Close()

		if uploadErr != nil {
			log.Printf("Error uploading file %s: %v", file.Filename, uploadErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		uploadedUrls = append(uploadedUrls, result.Location)

		productImage := models.ProductImage{
			Url:       result.Location,
			ProductID: uint(productId),
		}
		if err := initializers.DB.Create(&productImage).Error; err != nil {
			// The object is already in S3 at this point, keep going.
			log.Printf("Error saving image record: %v", err)
		}
	}

	invalidateProductCache(ctx.Request.Context())

	response := gin.H{"data": gin.H{"urls": uploadedUrls}}
	if len(failedUploads) > 0 {
		response["failed"] = failedUploads
	}
	sendSuccess(ctx, http.StatusOK, response)
}

// GetProducts lists the catalog with pagination and name search, serving
// from the Redis cache when one is configured.
func GetProducts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "12"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	search := ctx.Query("search")

	cacheKey := fmt.Sprintf("products:page=%d:limit=%d:search=%s", page, limit, search)
	if listing, ok := cachedProductListing(ctx.Request.Context(), cacheKey); ok {
		sendSuccess(ctx, http.StatusOK, gin.H{"data": listing})
		return
	}

	query := initializers.DB.Preload("Images")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var products []models.Product
	if result := query.Limit(limit).Offset((page - 1) * limit).Find(&products); result.Error != nil {
		log.Println("Product listing error:", result.Error)
		sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var count int64
	countQuery := initializers.DB.Model(&models.Product{})
	if search != "" {
		countQuery = countQuery.Where("name LIKE ?", "%"+search+"%")
	}
	countQuery.Count(&count)

	listing := productListing{
		Products: products,
		Metadata: gin.H{"total": count, "page": page, "limit": limit},
	}
	storeProductListing(ctx.Request.Context(), cacheKey, listing)

	sendSuccess(ctx, http.StatusOK, gin.H{"data": listing})
}

// GetProduct returns a single product with its specs and images.
func GetProduct(ctx *gin.Context) {
	productId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendError(ctx, http.StatusBadRequest, "invalid product ID")
		return
	}

	var product models.Product
	result := initializers.DB.Preload("Specifications").Preload("Images").First(&product, productId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendError(ctx, http.StatusNotFound, "product not found")
		} else {
			log.Println("Product fetch error:", result.Error)
			sendError(ctx, http.StatusInternalServerError, msgInternalServerError)
		}
		return
	}

	sendSuccess(ctx, http.StatusOK, gin.H{"data": product})
}

func cachedProductListing(ctx context.Context, key string) (*productListing, bool) {
	if initializers.Redis == nil {
		return nil, false
	}
	data, err := initializers.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var listing productListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, false
	}
	return &listing, true
}

func storeProductListing(ctx context.Context, key string, listing productListing) {
	if initializers.Redis == nil {
		return
	}
	data, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := initializers.Redis.Set(ctx, key, data, productCacheTTL).Err(); err != nil {
		log.Println("Product cache set error:", err)
	}
}

// invalidateProductCache drops every cached listing page after a catalog
// write.
func invalidateProductCache(ctx context.Context) {
	if initializers.Redis == nil {
		return
	}

	var cursor uint64
	for {
		keys, next, err := initializers.Redis.Scan(ctx, cursor, "products:*", 100).Result()
		if err != nil {
			log.Println("Product cache scan error:", err)
			return
		}
		if len(keys) > 0 {
			if err := initializers.Redis.Del(ctx, keys...).Err(); err != nil {
				log.Println("Product cache delete error:", err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
