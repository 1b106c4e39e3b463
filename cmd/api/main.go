package main

import (
	"go.uber.org/fx"

	"github.com/agah-solutions/forge/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
