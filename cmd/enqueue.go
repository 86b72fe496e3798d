package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"vodworks/internal/models"
)

var enqueueTypes []string

// enqueueCmd represents the enqueue command
var enqueueCmd = &cobra.Command{
	Use:   "enqueue <segment-id>",
	Short: "Enqueue processing jobs for a segment",
	Long: `Enqueues processing jobs for the given segment and kicks the worker.
Without --type, the standard upload stage set is enqueued (transcript,
transcode, thumbnail); the summary job chains off the transcript job.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// EnqueueProcessing kicks the poller; let it drain before the pools
		// close so a co-resident worker run finishes cleanly.
		defer func() {
			appInstance.Worker.Stop()
			appInstance.Worker.Wait()
			appInstance.Close()
		}()

		segmentID := args[0]

		var jobs []*models.Job
		if len(enqueueTypes) == 0 {
			jobs, err = appInstance.EnqueueProcessing(cmd.Context(), segmentID)
			if err != nil {
				return err
			}
		} else {
			for _, raw := range enqueueTypes {
				jobType, err := models.ParseJobType(raw)
				if err != nil {
					return err
				}
				job, err := appInstance.JobStore.EnqueueJob(cmd.Context(), segmentID, jobType)
				if err != nil {
					return fmt.Errorf("enqueue %s job: %w", jobType, err)
				}
				jobs = append(jobs, job)
			}
		}

		for _, job := range jobs {
			fmt.Printf("Enqueued %s job %s for segment %s\n", job.JobType, job.ID, job.SegmentID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	enqueueCmd.Flags().StringSliceVar(&enqueueTypes, "type", nil,
		fmt.Sprintf("Job types to enqueue (repeatable). One of: %v", models.AllJobTypes))
}
