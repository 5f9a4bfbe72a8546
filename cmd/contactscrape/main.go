// Command contactscrape fetches a page and prints the contact details found
// on it as JSON, CSV or YAML.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/contact-scraper/cmd/contactscrape/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
