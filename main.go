package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/Njagi/sokoni-api/initializers"
	"github.com/Njagi/sokoni-api/routes"
	"github.com/Njagi/sokoni-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectToDB()
	initializers.ConnectToRedis()
	initializers.SyncDatabase()
}

func main() {
	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authService := services.NewAuthService(initializers.DB, services.AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  authTokenTTL(),
	})
	cartService := services.NewCartService(initializers.DB)

	routes.DefaultRoutes(server)
	routes.AuthRoutes(server, authService)
	routes.CartRoutes(server, authService, cartService)
	routes.ProductRoutes(server, authService)
	routes.OrderRoutes(server, authService)

	server.Run()
}

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		return strings.Split(raw, ",")
	}
	return []string{"http://localhost:5173"}
}

// authTokenTTL reads AUTH_TOKEN_TTL (a Go duration); zero lets the auth
// service fall back to its 365 day default.
func authTokenTTL() time.Duration {
	raw := os.Getenv("AUTH_TOKEN_TTL")
	if raw == "" {
		return 0
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		log.Println("Invalid AUTH_TOKEN_TTL, using default:", err)
		return 0
	}
	return ttl
}
