package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"musebot/internal/logging"
	"musebot/internal/orchestrator"
)

var scriptConcurrency int

// scriptCmd replays transcript files through the dialogue, one simulated
// visitor per file. Useful for smoke-testing booking flows and for load
// checks against the shared conversation store.
var scriptCmd = &cobra.Command{
	Use:   "script [file...]",
	Short: "Replay transcript files as simulated visitors",
	Long: `Replays one or more transcript files through the booking dialogue.

Each file is one visitor: every non-empty line is sent as a message, in
order. Lines starting with '#' are comments. Files run concurrently, so
this doubles as a quick check that separate visitors never share state.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().IntVar(&scriptConcurrency, "concurrency", 4, "max transcripts replayed at once")
}

func runScript(cmd *cobra.Command, args []string) error {
	orch, st, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}
	st.StartJanitor(cmd.Context())
	defer st.Stop()

	var (
		mu      sync.Mutex
		reports []string
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(scriptConcurrency)

	for _, path := range args {
		g.Go(func() error {
			report, err := replayTranscript(ctx, orch, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Deterministic output order regardless of completion order.
	sort.Strings(reports)
	for _, r := range reports {
		fmt.Print(r)
	}
	return nil
}

// replayTranscript sends every line of one file as a fresh visitor and
// returns the printable exchange.
func replayTranscript(ctx context.Context, orch *orchestrator.Orchestrator, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	userID := uuid.NewString()
	log := logging.Get(logging.CategorySession)
	log.Infof("replaying %s as visitor %s", path, userID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", path)

	booked := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		resp, err := orch.HandleMessage(ctx, userID, line)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&sb, "> %s\n", line)
		fmt.Fprintf(&sb, "  %s\n", resp.Message)
		if resp.Kind == orchestrator.ResponseComplete {
			booked = true
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if booked {
		sb.WriteString("  [booking complete]\n")
	} else {
		sb.WriteString("  [booking incomplete]\n")
	}
	return sb.String(), nil
}
