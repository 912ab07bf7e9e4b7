package main

import (
	"trendpress/cmd/handlers"
	"trendpress/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
