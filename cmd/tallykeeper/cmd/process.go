package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/solatis/tallykeeper/internal/core/config"
	"github.com/solatis/tallykeeper/internal/core/db"
	"github.com/solatis/tallykeeper/internal/metrics"
	"github.com/solatis/tallykeeper/internal/types"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// scanner buffer sized for events near the value-length limits
const maxEventLine = 1 << 20

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Transform newline-delimited JSON events from stdin into store commands",
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := metrics.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to compile config: %w", err)
	}

	var applier *db.Applier
	if dbURL != "" {
		database, err := db.Open(dbURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		applier, err = db.NewApplier(database)
		if err != nil {
			return fmt.Errorf("failed to create applier: %w", err)
		}
	}

	log.Printf("Starting tallykeeper v%s", Version)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), maxEventLine)

	var processed, failed, emitted int

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		result, err := engine.Process(line, time.Now())
		if err != nil {
			failed++
			log.Printf("event rejected: %v", err)
			continue
		}

		processed++
		emitted += len(result.Commands)

		for _, c := range result.Commands {
			fmt.Fprintln(out, formatCommand(c))
		}

		if applier != nil {
			if _, err := applier.ApplyBatch(result.Commands); err != nil {
				return fmt.Errorf("failed to apply batch: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	log.Printf("Done: %d events processed, %d rejected, %d commands emitted", processed, failed, emitted)
	return nil
}

// formatCommand renders one command as a tab-separated line:
// kind, key, payload (bitmap member or numeric amount).
func formatCommand(c types.Command) string {
	if c.Kind == types.CmdBitmap {
		return c.Kind.String() + "\t" + c.Key + "\t" + c.Member
	}
	return c.Kind.String() + "\t" + c.Key + "\t" + strconv.FormatFloat(c.Amount, 'f', -1, 64)
}
