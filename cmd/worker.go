package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"vodworks/internal/app"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job worker",
	Long: `Starts the polling worker that claims pending jobs from the database
and processes them one at a time until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get application context: %w", err)
		}
		return runWorker(appInstance)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(appInstance *app.App) error {
	defer appInstance.Close()

	appInstance.Worker.Start()
	log.WithFields(log.Fields{
		"poll_interval_s": appInstance.Config.Worker.PollIntervalSeconds,
		"qualities":       appInstance.Config.Worker.Qualities,
	}).Info("Worker started, waiting for jobs")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("Shutdown signal received. Finishing current job...")
	appInstance.Worker.Stop()
	appInstance.Worker.Wait()
	log.Info("Worker stopped")
	return nil
}
