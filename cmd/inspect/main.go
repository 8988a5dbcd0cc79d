package main

import (
	"chat-relay/domain/event"
	"chat-relay/repositories"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Prints the history stored by a stopped relay using the badger backend.
func main() {
	dbPath := flag.String("db", "./data/chat", "Path to badger DB")
	last := flag.Int("last", 0, "Only show the last N messages (0 shows all)")
	noColor := flag.Bool("no-color", false, "Disable colors")
	flag.Parse()

	if *noColor {
		color.Disable()
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	messages, err := repositories.ScanMessages(db)
	if err != nil {
		log.Fatal("Error while reading history: ", err)
	}
	total := len(messages)
	if *last > 0 && *last < total {
		messages = messages[total-*last:]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Timestamp", "Username", "Message", "ID"})
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

	offset := total - len(messages)
	for i, m := range messages {
		table.Append([]string{
			strconv.Itoa(offset + i + 1),
			event.FormatTimestamp(m.Timestamp),
			color.Cyan.Sprint(m.Username),
			m.Body,
			m.ID.String(),
		})
	}
	table.Render()
	fmt.Println(color.Gray.Sprintf("%d message(s) shown, %d stored", len(messages), total))
}
