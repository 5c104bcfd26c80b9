package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/date"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/engine"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/movement"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/recompute"
	"github.com/DarioAlonsoCerezo/Binnaculum-sub005/snapshotrender"
)

// reportCmd loads a movements file, imports it into a fresh Engine, and
// prints the resulting snapshot series for one target.
type reportCmd struct {
	movementsFile string
	target        string
	id            int64
	since         string
	verbose       bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "import a movements file and print a snapshot report" }
func (*reportCmd) Usage() string {
	return `snapshotctl report -movements <file> -target account|broker|overview [-id <n>] [-since <date>]

  Imports every movement in the JSONL movements file into a fresh, in-memory
  engine and prints the resulting snapshot series for the given target,
  optionally truncated to snapshots on or after -since.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.movementsFile, "movements", "", "path to the JSONL movements file")
	f.StringVar(&c.target, "target", "overview", "report target: account, broker, or overview")
	f.Int64Var(&c.id, "id", 0, "account or broker id, ignored for target=overview")
	f.StringVar(&c.since, "since", "", "only print snapshots from this date onward: an ISO date, \"0d\" for today, or a relative offset like \"-30d\"/\"-1m\" (default: every snapshot)")
	f.BoolVar(&c.verbose, "v", false, "enable verbose logging during import")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.movementsFile == "" {
		return fatalf("missing required -movements flag")
	}

	f, err := os.Open(c.movementsFile)
	if err != nil {
		return fatalf("opening movements file %q: %v", c.movementsFile, err)
	}
	defer f.Close()

	logLevel := zerolog.WarnLevel
	if c.verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()

	eng := engine.New(engine.Config{
		Config: recompute.Config{
			MainCurrencyForAccount: func(movement.AccountID) string { return "USD" },
			MainCurrencyForBroker:  func(movement.BrokerID) string { return "USD" },
			OverviewMainCurrency:   "USD",
		},
		Log: logger,
	})

	movs, err := loadMovements(eng, f)
	if err != nil {
		return fatalf("loading movements: %v", err)
	}
	if len(movs) == 0 {
		return fatalf("movements file %q contained no movements", c.movementsFile)
	}

	if _, err := eng.Import(ctx, movs, engine.ImportOptions{}); err != nil {
		return fatalf("import failed: %v", err)
	}

	since := date.Date{}
	if c.since != "" {
		since, err = date.Parse(c.since)
		if err != nil {
			return fatalf("parsing -since %q: %v", c.since, err)
		}
	}

	switch c.target {
	case "account":
		series := eng.GetSnapshots(movement.AccountID(c.id), since)
		printMarkdown(os.Stdout, snapshotrender.AccountMarkdown(strconv.FormatInt(c.id, 10), series))
	case "broker":
		series := eng.GetBrokerSnapshots(movement.BrokerID(c.id), since)
		printMarkdown(os.Stdout, snapshotrender.BrokerMarkdown(strconv.FormatInt(c.id, 10), series))
	case "overview":
		series := eng.GetOverviewSnapshots(since)
		printMarkdown(os.Stdout, snapshotrender.OverviewMarkdown(series))
	default:
		return fatalf("unknown -target %q: want account, broker, or overview", c.target)
	}

	return subcommands.ExitSuccess
}

// loadMovements decodes every JSONL record, registering each record's
// (account, broker) pair with eng as it goes.
func loadMovements(eng *engine.Engine, f *os.File) ([]movement.Movement, error) {
	var movs []movement.Movement
	registered := map[movement.AccountID]bool{}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		r, err := parseRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		account := movement.AccountID(r.Account)
		if !registered[account] {
			eng.RegisterAccount(account, movement.BrokerID(r.Broker))
			registered[account] = true
		}
		mv, err := r.toMovement()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		movs = append(movs, mv)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return movs, nil
}
