package main

import (
	"go.uber.org/fx"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
