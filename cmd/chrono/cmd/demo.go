package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/scopelab/chrono/monitoring"
	"github.com/scopelab/chrono/recording"
	"github.com/scopelab/chrono/timeline"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an instrumented demo workload.",
	Long: "`demo --db [file]` runs a small instrumented workload and " +
		"records the resulting chains into a SQLite file. With --monitor " +
		"the workload keeps running and serves its state on the monitoring " +
		"port until interrupted.",
	Run: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("db", "",
		"Name of the SQLite recording to create, without the .sqlite3 suffix")
	demoCmd.Flags().Int("rounds", 10,
		"Number of workload rounds to run")
	demoCmd.Flags().Bool("monitor", false,
		"Serve the monitoring API while running")
	demoCmd.Flags().Int("port", 0,
		"Port for the monitoring server")
	demoCmd.Flags().Bool("open", false,
		"Open the dashboard in a browser")
}

func runDemo(cmd *cobra.Command, _ []string) {
	dbPath, _ := cmd.Flags().GetString("db")
	rounds, _ := cmd.Flags().GetInt("rounds")
	serve, _ := cmd.Flags().GetBool("monitor")
	port, _ := cmd.Flags().GetInt("port")
	open, _ := cmd.Flags().GetBool("open")

	t := timeline.CurrentTimeline()

	if dbPath != "" {
		recorder := recording.NewRecorder(
			recording.NewSQLiteScopeWriter(dbPath))
		recorder.Attach(t)
	}

	var bar *monitoring.ProgressBar
	if serve {
		monitor := monitoring.NewMonitor()
		if port != 0 {
			monitor.WithPortNumber(port)
		}

		monitor.RegisterTimeline("demo", t)
		monitor.StartServer()

		if open {
			monitor.OpenDashboard()
		}

		bar = monitor.CreateProgressBar("demo rounds", uint64(rounds))
	}

	interrupted := make(chan os.Signal, 1)
	if serve {
		signal.Notify(interrupted, os.Interrupt)
		fmt.Println("Press Ctrl+C to stop.")
	}

	count := 0
	for {
		demoRound()
		count++

		if bar != nil && count <= rounds {
			bar.IncrementFinished(1)
		}

		if count >= rounds && !serve {
			break
		}

		select {
		case <-interrupted:
			fmt.Printf("Stopped after %d rounds.\n", count)
			atexit.Exit(0)
		default:
		}

		if serve {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("Completed %d rounds.\n", count)
	atexit.Exit(0)
}

func demoRound() {
	round := timeline.BeginFunc()
	defer round.Finish()

	for i := 0; i < 4; i++ {
		stage := timeline.BeginBlock("stage")

		work(200 * time.Microsecond)

		for j := 0; j < 3; j++ {
			step := timeline.BeginBlock("step")
			work(100 * time.Microsecond)
			step.Finish()
		}

		stage.Finish()
	}
}

// work spins instead of sleeping so the CPU profile and the resource
// endpoint have something to show.
func work(d time.Duration) {
	end := time.Now().Add(d)
	for time.Now().Before(end) {
	}
}
