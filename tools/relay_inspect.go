package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"pq-messenger/domain"
	"pq-messenger/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type inspectConfig struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	// INSPECT_COLOURS highlights section headers
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var cfg inspectConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Error while reading config: ", err)
	}
	dbPath := flag.String("db", cfg.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Only scan this prefix (msg:, user:, keypair:)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	prefixes := repositories.Prefixes
	if *prefix != "" {
		prefixes = []string{*prefix}
	}
	for _, p := range prefixes {
		records, err := repositories.ScanRecords(db, p)
		if err != nil {
			log.Fatal(err)
		}
		header := fmt.Sprintf("  ====== %s (%d) ======", p, len(records))
		if cfg.Colours {
			header = color.New(color.BgBlack, color.FgGreen).Render(header)
		}
		fmt.Println(header)
		render(records)
	}
}

func render(records []repositories.Record) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Parties", "Detail"})
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

	for _, r := range records {
		if r.Err != nil {
			table.Append([]string{r.Key, "ERROR", "", "", color.Red.Render(r.Err.Error())})
			continue
		}
		switch v := r.Value.(type) {
		case domain.Message:
			table.Append([]string{
				shorten(r.Key, 48),
				"MESSAGE",
				v.Timestamp.Format(time.RFC3339Nano),
				v.Sender + " -> " + v.Recipient,
				fmt.Sprintf("payload=%dB encapsulated_key=%dB", decodedLen(v.Payload), decodedLen(v.EncapsulatedKey)),
			})
		case domain.User:
			table.Append([]string{r.Key, "USER", v.CreatedAt.Format(time.RFC3339), v.Username, shorten(v.ID, 8)})
		case domain.KeyPair:
			table.Append([]string{
				r.Key,
				"KEYPAIR",
				v.CreatedAt.Format(time.RFC3339),
				v.Username,
				v.Scheme + " pk=" + strconv.Itoa(len(v.PublicKey)) + "B",
			})
		default:
			table.Append([]string{r.Key, "RAW", "", "", ""})
		}
	}
	table.Render()
}

func decodedLen(b64 string) int {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return -1
	}
	return len(raw)
}

func shorten(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
