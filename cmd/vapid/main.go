// Command vapid prints a fresh VAPID key pair for web push.
package main

import (
	"fmt"
	"log"

	"foundersnexus/notify"
)

func main() {
	publicKey, privateKey, err := notify.GenerateKeys()
	if err != nil {
		log.Fatal("Failed to generate VAPID keys:", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
	fmt.Println("VAPID_SUBSCRIBER=mailto:admin@example.com")
}
