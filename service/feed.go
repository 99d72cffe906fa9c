package service

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"freyr/domain/book"
)

// FeedCommand is one parsed row of the flat-file order feed.
//
// Rows are comma separated:
//
//	A,<id>,<B|S>,<qty>,<price>   submit (price 0 means market)
//	X,<id>                       cancel
type FeedCommand struct {
	Kind     byte
	ID       book.OrderID
	BuySide  bool
	Quantity book.Quantity
	Price    book.Price
}

// ParseFeedLine parses one feed row. Blank lines and lines starting
// with '#' yield ok=false with no error.
func ParseFeedLine(line string) (FeedCommand, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return FeedCommand{}, false, nil
	}

	fields := strings.Split(line, ",")
	switch fields[0] {
	case "A":
		if len(fields) != 5 {
			return FeedCommand{}, false, fmt.Errorf("service: submit row needs 5 fields: %q", line)
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return FeedCommand{}, false, fmt.Errorf("service: bad order id %q", fields[1])
		}
		side := fields[2]
		if side != "B" && side != "S" {
			return FeedCommand{}, false, fmt.Errorf("service: bad side %q", side)
		}
		qty, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return FeedCommand{}, false, fmt.Errorf("service: bad quantity %q", fields[3])
		}
		price, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return FeedCommand{}, false, fmt.Errorf("service: bad price %q", fields[4])
		}
		return FeedCommand{
			Kind:     'A',
			ID:       book.OrderID(id),
			BuySide:  side == "B",
			Quantity: book.Quantity(qty),
			Price:    book.Price(price),
		}, true, nil
	case "X":
		if len(fields) < 2 {
			return FeedCommand{}, false, fmt.Errorf("service: cancel row needs an id: %q", line)
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return FeedCommand{}, false, fmt.Errorf("service: bad order id %q", fields[1])
		}
		return FeedCommand{Kind: 'X', ID: book.OrderID(id)}, true, nil
	default:
		return FeedCommand{}, false, fmt.Errorf("service: unknown message type %q", fields[0])
	}
}

// RunFeed drives the engine from a flat-file order feed, routing every
// submit to the given symbol. Malformed rows and commands the market
// refuses are logged and skipped; only a read error stops the run.
func (e *Engine) RunFeed(r io.Reader, symbol book.Symbol) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		cmd, ok, err := ParseFeedLine(scanner.Text())
		if err != nil {
			e.log.Warn().Err(err).Int("line", lineNo).Msg("skipping feed row")
			continue
		}
		if !ok {
			continue
		}

		switch cmd.Kind {
		case 'A':
			if cmd.Price > 0 {
				err = e.SubmitLimit(cmd.ID, cmd.BuySide, symbol, cmd.Quantity, cmd.Price)
			} else {
				err = e.SubmitMarket(cmd.ID, cmd.BuySide, symbol, cmd.Quantity)
			}
		case 'X':
			_, err = e.Cancel(cmd.ID)
		}
		if err != nil {
			e.log.Warn().Err(err).Int("line", lineNo).Msg("feed command not applied")
		}
	}
	return scanner.Err()
}
