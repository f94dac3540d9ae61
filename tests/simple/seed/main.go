// Command seed writes a sample SQLite events table for exercising the
// colgraph CLI:
//
//	go run ./tests/simple/seed -db hits.db -entries 100000
//	colgraph scan -db hits.db -table hits -filter "q > 0" -filter "pt > 30" -mean pt -report
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	_ "modernc.org/sqlite"
)

func main() {
	dbPath := flag.String("db", "hits.db", "SQLite database file to create")
	table := flag.String("table", "hits", "table name")
	entries := flag.Int("entries", 10000, "number of entries to generate")
	seed := flag.Uint64("seed", 1, "PRNG seed")
	flag.Parse()

	if err := run(*dbPath, *table, *entries, *seed); err != nil {
		log.Fatal(err)
	}
}

func run(dbPath, table string, entries int, seed uint64) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(
		`CREATE TABLE %q (pt REAL NOT NULL, eta REAL NOT NULL, q INTEGER NOT NULL, kind TEXT NOT NULL)`,
		table))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	kinds := []string{"mu", "e", "pi"}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO %q (pt, eta, q, kind) VALUES (?, ?, ?, ?)`, table))
	if err != nil {
		tx.Rollback()
		return err
	}
	for i := 0; i < entries; i++ {
		pt := rng.ExpFloat64() * 20
		eta := rng.NormFloat64() * 1.5
		q := int64(1)
		if rng.IntN(2) == 0 {
			q = -1
		}
		if _, err := stmt.Exec(pt, eta, q, kinds[rng.IntN(len(kinds))]); err != nil {
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("wrote %d entries to %s table %q", entries, dbPath, table)
	return nil
}
