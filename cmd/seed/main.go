package main

import (
	"flag"
	"log"
	"os"

	"github.com/kiwari-pos/tableside/internal/catalog"
)

func main() {
	// CLI flags
	out := flag.String("out", "", "Path to write the demo menu to")
	check := flag.String("check", "", "Validate an existing menu file instead of writing one")
	force := flag.Bool("force", false, "Overwrite an existing menu file")
	flag.Parse()

	if *check != "" {
		c, err := catalog.LoadFile(*check)
		if err != nil {
			log.Fatalf("Invalid menu: %v", err)
		}
		log.Printf("Menu OK: %d items in %d categories", len(c.Items()), len(c.Categories()))
		return
	}

	// Fall back to the file the server reads
	if *out == "" {
		*out = os.Getenv("MENU_FILE")
	}
	if *out == "" {
		*out = "menu.json"
	}

	if _, err := os.Stat(*out); err == nil && !*force {
		log.Printf("Menu file '%s' already exists, skipping (use -force to overwrite)", *out)
		return
	}

	items := catalog.DemoItems()
	if err := catalog.WriteFile(*out, items); err != nil {
		log.Fatalf("Failed to write menu: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Wrote %d menu items to %s", len(items), *out)
}
