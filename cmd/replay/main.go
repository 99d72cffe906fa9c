// Command replay drives the engine from a flat-file order feed and
// prints the resulting book. Useful for scripted scenarios and for
// replaying captured sessions without a running server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"freyr/domain/book"
	"freyr/domain/market"
	"freyr/infra/sequence"
	"freyr/service"
)

func main() {
	var (
		feedPath = flag.String("feed", "", "order feed file (A/X rows), - for stdin")
		symbol   = flag.Uint64("symbol", 1, "symbol every submit is routed to")
		depth    = flag.Int("depth", book.DefaultDepth, "visible depth levels per side")
		level    = flag.String("log", "warn", "log level")
	)
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	in := os.Stdin
	if *feedPath != "" && *feedPath != "-" {
		f, err := os.Open(*feedPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open feed")
		}
		defer f.Close()
		in = f
	}

	m := market.NewMarket(log, *depth)
	eng := service.NewEngine(log, m, nil, sequence.New(0), nil, nil)
	if err := eng.AddBook(book.Symbol(*symbol)); err != nil {
		log.Fatal().Err(err).Msg("book init")
	}

	if err := eng.RunFeed(in, book.Symbol(*symbol)); err != nil {
		log.Fatal().Err(err).Msg("feed read failed")
	}

	bd, err := eng.Snapshot(book.Symbol(*symbol))
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot")
	}

	fmt.Printf("symbol %d\n", *symbol)
	fmt.Println("  bids:")
	for _, l := range bd.Bids {
		fmt.Printf("    %8d x %d\n", l.Price, l.Quantity)
	}
	fmt.Println("  asks:")
	for _, l := range bd.Asks {
		fmt.Printf("    %8d x %d\n", l.Price, l.Quantity)
	}
}
