package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pinghunt/database"
	"pinghunt/jobs"
	"pinghunt/providers/geocode"
	"pinghunt/providers/price"
	solanaprovider "pinghunt/providers/solana"
	"pinghunt/routes"
	"pinghunt/services/funding"
	"pinghunt/services/hintverify"
	"pinghunt/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	if err := wallet.CheckKey(); err != nil {
		log.Fatal("❌ Wallet encryption key misconfigured: ", err)
	}

	database.Connect()

	chain, err := solanaprovider.NewClient()
	if err != nil {
		log.Fatal("❌ Failed to init Solana client: ", err)
	}
	funding.Sender = chain
	hintverify.Fetcher = chain
	hintverify.Price = price.NewJupiterSource()
	geocode.Default = geocode.NewNominatimResolver()

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")

	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}

	app := fiber.New()
	routes.Setup(app)
	jobs.StartPendingClaimWatcher()

	addr := fmt.Sprintf("%s:%s", host, port)
	log.Println("Server running at", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Gracefully shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited cleanly")
}
