package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/elshop/internal/api/handler"
	"github.com/RoyceAzure/lab/elshop/internal/api/router"
	"github.com/RoyceAzure/lab/elshop/internal/config"
	"github.com/RoyceAzure/lab/elshop/internal/infra/producer"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/elshop/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cf := config.GetConfig()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "elshop").Logger()

	// DB
	conn, err := db.GetDbConn(cf.DbName, cf.DbHost, cf.DbPort, cf.DbUser, cf.DbPas)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.RegisterAuditCallbacks(conn); err != nil {
		log.Fatal(err)
	}
	store := db.NewUnifiedDB(conn)
	if err := store.InitMigrate(); err != nil {
		log.Fatal(err)
	}

	// Redis 購物車
	cartCache := redis.NewClient(&redis.Options{
		Addr:     cf.RedisAddr,
		Password: cf.RedisPassword,
	})
	cartRepo := redis_repo.NewCartRepo(cartCache)

	// 定價規則
	taxRate, threshold, flatCost, err := cf.PricingConfig()
	if err != nil {
		log.Fatal(err)
	}
	pricingService := service.NewPricingService(service.PricingConfig{
		TaxRate:               taxRate,
		FreeShippingThreshold: threshold,
		FlatShippingCost:      flatCost,
	})

	// Kafka 訂單事件，未設定 broker 時不發佈
	var orderEventProducer service.OrderEventPublisher
	if cf.KafkaBrokers != "" {
		p := producer.NewOrderEventProducer(strings.Split(cf.KafkaBrokers, ","), cf.KafkaTopic)
		defer p.Close()
		orderEventProducer = p
	}

	// services
	var inventory service.InventoryReserver
	if cf.InventoryReservation {
		inventory = service.NewInventoryService()
	}
	checkoutService := service.NewCheckoutService(store, pricingService, inventory, orderEventProducer, logger)
	orderService := service.NewOrderService(store)
	productService := service.NewProductService(store)
	customerService := service.NewCustomerService(store, store)

	// handlers
	handlers := router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService, cartRepo),
		Cart:     handler.NewCartHandler(cartRepo, productService),
		Order:    handler.NewOrderHandler(orderService),
		Product:  handler.NewProductHandler(productService),
		Customer: handler.NewCustomerHandler(customerService),
	}

	r := router.SetupRouter(handlers, &logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cf.ServerPort),
		Handler: r,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		shutDownCompleted <- struct{}{}
	}()

	log.Printf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
	<-shutDownCompleted
	log.Printf("closed completed")
}
