package main

import (
	"log"

	tool "github.com/sandeepkv93/catalog-console/internal/tools/catalogctl"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
