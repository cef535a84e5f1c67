package main

import (
	"os"

	"github.com/htol/locallibrary/app"
)

func main() {
	os.Exit(app.CLI(os.Args[1:]))
}
