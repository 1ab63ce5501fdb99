package main

import (
	"github.com/crewple/user_service/config"
	"github.com/crewple/user_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
