package main

import (
	"github.com/frahmantamala/civic-complaints/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cmd.Execute()
}
