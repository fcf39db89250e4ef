package main

import (
	"os"

	"github.com/GoAssetAdmin/GoAssetAdmin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
