package main

import (
	"github.com/leandrosouzaa/desafio-database-relations/internal/app"
	"github.com/leandrosouzaa/desafio-database-relations/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
