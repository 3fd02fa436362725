package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-pricing/internal/catalog"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
)

// checkout prices baskets from the command line. Each argument, or each stdin
// line when no arguments are given, is one basket of single-letter SKUs.
// Rejected baskets print -1. Exit code 0 = all priced, 1 = a basket was
// rejected, 2 = other error.
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	_ = godotenv.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).With().Timestamp().Logger()

	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesFile := fs.String("rules", os.Getenv("PRICING_RULES_FILE"), "YAML pricing rules file (reference catalog when empty)")
	quote := fs.Bool("quote", false, "print the full JSON breakdown instead of the total")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rules, err := catalog.Load(*rulesFile)
	if err != nil {
		logger.Error().Err(err).Str("file", *rulesFile).Msg("load pricing rules")
		return 2
	}
	engine, err := pricing.NewEngine(rules)
	if err != nil {
		logger.Error().Err(err).Msg("compile pricing rules")
		return 2
	}

	baskets := fs.Args()
	if len(baskets) == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			baskets = append(baskets, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			logger.Error().Err(err).Msg("read stdin")
			return 2
		}
	}

	code := 0
	enc := json.NewEncoder(stdout)
	for _, basket := range baskets {
		q, err := engine.Quote(basket)
		if err != nil {
			logger.Warn().Err(err).Str("basket", basket).Msg("basket rejected")
			code = 1
			fmt.Fprintln(stdout, pricing.InvalidTotal)
			continue
		}
		if *quote {
			if err := enc.Encode(q); err != nil {
				logger.Error().Err(err).Msg("encode quote")
				return 2
			}
			continue
		}
		fmt.Fprintln(stdout, q.Total)
	}
	return code
}
