// Package main is the entry point for the form-fill service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/formfill/cmd/formfill/app"
)

func main() {
	app.NewApp().Run()
}
