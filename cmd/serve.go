package cmd

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"vodworks/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the operational HTTP API",
	Long: `Starts an HTTP server exposing job queue operations: enqueue processing
for a segment, inspect jobs, and check worker status. The polling worker
runs in the same process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			appInstance.Worker.Stop()
			appInstance.Worker.Wait()
			appInstance.Close()
		}()

		// Serve mode runs the poller alongside the API so enqueued jobs are
		// picked up without a separate worker process.
		appInstance.Worker.Start()

		router := gin.Default()
		apiHandler := apihandlers.NewAPIHandler(appInstance)

		v1 := router.Group("/api/v1")
		{
			jobGroup := v1.Group("/jobs")
			{
				jobGroup.POST("", apiHandler.EnqueueJobsHandler)
				jobGroup.GET("", apiHandler.ListJobsHandler)
				jobGroup.GET("/:id", apiHandler.GetJobHandler)
			}
			v1.GET("/worker", apiHandler.WorkerStatusHandler)
		}

		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		listenAddr := fmt.Sprintf("%s:%s", serveAddr, servePort)
		log.WithField("addr", listenAddr).Info("Starting API server")

		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost", "Address to listen on (e.g., '0.0.0.0' for all interfaces)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
}
