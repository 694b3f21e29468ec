// apply_schema applies every .sql file in the migrations directory, in
// lexical order, against DATABASE_URL. The files are written to be re-runnable
// (CREATE TABLE IF NOT EXISTS, guarded seed inserts), so running this tool on
// an existing database is safe.
//
// Usage: go run ./migrations [-dir migrations] [-only 002_seed.sql]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"boq-procurement/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", "migrations", "directory containing .sql files")
	only := flag.String("only", "", "apply a single named file instead of the whole directory")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	var files []string
	if *only != "" {
		files = []string{filepath.Join(*dir, *only)}
	} else {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
				files = append(files, filepath.Join(*dir, e.Name()))
			}
		}
		sort.Strings(files)
	}
	if len(files) == 0 {
		log.Fatalf("No .sql files found in %s", *dir)
	}

	for _, f := range files {
		sqlText, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(sqlText)); err != nil {
			log.Fatalf("Applying %s failed: %v", f, err)
		}
		log.Printf("Applied %s", f)
	}
	log.Println("Migration successful.")
}
