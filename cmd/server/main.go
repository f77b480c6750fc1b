package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kaiserhaus-checkout-service/internal/config"
	"kaiserhaus-checkout-service/internal/controller"
	"kaiserhaus-checkout-service/internal/middleware"
	"kaiserhaus-checkout-service/internal/rabbit"
	"kaiserhaus-checkout-service/internal/repository"
	"kaiserhaus-checkout-service/internal/service"
	"kaiserhaus-checkout-service/internal/vault"
)

func main() {
	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDBName)

	// Conexión a RabbitMQ
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("Error conectando a RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("Error creando canal en RabbitMQ: %v", err)
	}
	publisher, err := rabbit.NewPublisher(ch)
	if err != nil {
		log.Fatalf("Error declarando exchanges en RabbitMQ: %v", err)
	}

	sealer, err := vault.NewAESSealer(cfg.EncryptionKey)
	if err != nil {
		log.Fatal(err)
	}

	// Repositorios y servicios
	orderRepo := repository.NewMongoOrderRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	paymentRepo := repository.NewMongoPaymentRepository(db)
	cardRepo := repository.NewMongoCardRepository(db)
	seqRepo := repository.NewMongoSequenceRepository(db)

	orderService := service.NewOrderService(orderRepo, productRepo, seqRepo, publisher)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, cardRepo, seqRepo, orderService, publisher, cfg.MerchantName, cfg.MerchantCity)
	stockService := service.NewStockService(productRepo)
	cardService := service.NewCardService(cardRepo, sealer)
	authService := service.NewAuthService(cfg.AuthURL)

	// Handlers
	orderCtrl := controller.NewOrderController(orderService)
	paymentCtrl := controller.NewPaymentController(paymentService)
	productCtrl := controller.NewProductController(stockService)
	cardCtrl := controller.NewCardController(cardService)

	// Router
	r := gin.Default()

	// Webhook público: lo llama el proveedor de pagos, sin token
	r.POST("/payments/pix/webhook", paymentCtrl.PixWebhook)

	// Rutas protegidas (requieren token)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.POST("/orders", orderCtrl.Checkout)
	auth.GET("/orders", orderCtrl.ListMyOrders)
	auth.GET("/orders/:orderId", orderCtrl.GetOrder)
	auth.PATCH("/orders/:orderId/status", orderCtrl.UpdateStatus)

	auth.POST("/payments/pix", paymentCtrl.CreatePixPayment)
	auth.POST("/payments/card", paymentCtrl.CreateCardPayment)
	auth.GET("/payments/order/:orderId", paymentCtrl.GetPaymentForOrder)

	auth.GET("/products/:productId/stock", productCtrl.CheckStock)

	auth.POST("/cards", cardCtrl.CreateCard)
	auth.GET("/cards", cardCtrl.ListCards)
	auth.DELETE("/cards/:cardId", cardCtrl.DeleteCard)

	// Rutas admin
	admin := auth.Group("/")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders/admin", orderCtrl.ListAllOrders)
	admin.GET("/orders/admin/counters", orderCtrl.OrderCounters)
	admin.PATCH("/products/:productId/stock", productCtrl.AdjustStock)
	admin.POST("/products/migrate-stock", productCtrl.MigrateStock)

	// Ejecutar servidor
	log.Printf("Checkout Service ejecutándose en puerto %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
