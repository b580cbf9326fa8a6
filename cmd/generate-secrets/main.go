package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/cafeteria/menu-backend/internal/utils"
)

func main() {
	bytes := flag.Int("bytes", utils.MinJWTSecretBytes, "number of random bytes in the secret")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for the cafeteria menu backend")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateJWTSecret(*bytes)
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Secret generated successfully!")
	fmt.Println()
	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("IMPORTANT: Keep this secret safe and never commit it to version control!")
	fmt.Println("===========================================")
}
