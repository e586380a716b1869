package main

import (
	"dm-lab/infrastructure/storage"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// INSPECT_COLOURS colours the record kinds
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
	Limit   int  `envconfig:"INSPECT_LIMIT" default:"200"`
}

var kindStyles = map[string]color.Style{
	"CONVERSATION": color.New(color.FgCyan, color.OpBold),
	"MESSAGE":      color.New(color.FgGreen),
	"ATTACHMENT":   color.New(color.FgYellow),
	"BLOB":         color.New(color.FgGray),
	"MEMBER":       color.New(color.FgMagenta),
	"PROFILE":      color.New(color.FgBlue),
	"RAW":          color.New(color.FgRed),
}

func main() {
	prefix := flag.String("prefix", "conv:", "Prefix to scan (conv:, msg:, att:, member:, profile:, ...)")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	// Read-only so a running server keeps its lock.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while opening Badger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := renderRecords(os.Stdout, db, *prefix, config); err != nil {
		fmt.Fprintf(os.Stderr, "inspect failed: %v\n", err)
		os.Exit(1)
	}
}

func renderRecords(w io.Writer, db *badger.DB, prefix string, config Config) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Kind", "At", "Entity", "Detail", "Key"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if config.Limit > 0 && rows == config.Limit {
				return nil
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				view := storage.Describe(key, val)
				at := "-"
				if !view.At.IsZero() {
					at = view.At.UTC().Format(time.DateTime)
				}
				table.Append([]string{kindLabel(view.Kind, config.Colours), at, view.Entity, view.Detail, key})
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	_, err = fmt.Fprintf(w, "\n%d records under %q\n", rows, prefix)
	return err
}

func kindLabel(kind string, colours bool) string {
	style, ok := kindStyles[kind]
	if !colours || !ok {
		return kind
	}
	return style.Render(kind)
}
