package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// settool inspects and edits the daemon's settings database directly.
// Useful when the daemon is stopped or the passcode is lost.
func main() {
	log.SetFlags(0)

	dbPath := flag.String("db", ".config/screentimed.db", "path to the settings SQLite DB")
	get := flag.String("get", "", "print the value of a single key")
	set := flag.String("set", "", "write a key=value pair")
	prefix := flag.String("prefix", "", "list only keys with this prefix")
	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath+"?_busy_timeout=5000")
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	switch {
	case *get != "":
		var value string
		err := db.QueryRow("SELECT value FROM settings WHERE key = ?", *get).Scan(&value)
		if err == sql.ErrNoRows {
			log.Printf("key %q not found", *get)
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Println(value)

	case *set != "":
		key, value, ok := strings.Cut(*set, "=")
		if !ok || key == "" {
			log.Fatalf("expected -set key=value")
		}
		_, err := db.Exec(
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
			key, value,
		)
		if err != nil {
			log.Fatalf("write: %v", err)
		}
		log.Printf("set %s = %s", key, value)

	default:
		if err := listSettings(db, *prefix); err != nil {
			log.Fatalf("list: %v", err)
		}
	}
}

func listSettings(db *sql.DB, prefix string) error {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		return err
	}
	defer rows.Close()

	type kv struct{ key, value string }
	var entries []kv
	for rows.Next() {
		var e kv
		if err := rows.Scan(&e.key, &e.value); err != nil {
			return err
		}
		if prefix != "" && !strings.HasPrefix(e.key, prefix) {
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	for _, e := range entries {
		fmt.Printf("%-32s %s\n", e.key, e.value)
	}
	return nil
}
