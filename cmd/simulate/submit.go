package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"PortfolioSim/internal/domain/models"
	xhttp "PortfolioSim/pkg/http"

	"github.com/spf13/cobra"
)

func submitCmd(_ *rootOptions) *cobra.Command {
	var (
		flags    requestFlags
		server   string
		wait     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a simulation to a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			client := xhttp.NewClient(xhttp.WithBaseURL(server), xhttp.WithTimeout(30*time.Second))

			var sub struct {
				ID     string           `json:"id"`
				Status models.JobStatus `json:"status"`
			}
			if err := client.SendAndParse(cmd.Context(), &xhttp.RequestOptions{
				Method: http.MethodPost,
				Path:   "/api/simulations",
				Body:   req,
			}, &sub); err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s %s\n", sub.ID, sub.Status)
			if !wait {
				return nil
			}

			job, err := pollJob(cmd.Context(), client, sub.ID, interval, func(j *models.Job) {
				fmt.Fprintf(cmd.ErrOrStderr(), "\r%-8s %3d%%", j.Status, j.Progress)
			})
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if job.Status == models.JobError {
				return fmt.Errorf("simulation failed: %s", job.Message)
			}
			var stats models.Stats
			if job.Stats != nil {
				stats = *job.Stats
			}
			summarize(job.Results, stats).print(cmd.OutOrStdout(), req.InitialValue)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "server base URL")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the job finishes and print a summary")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "poll interval with --wait")
	return cmd
}

// pollJob fetches the job until it is terminal. Results are requested only for
// the final fetch.
func pollJob(ctx context.Context, client *xhttp.Client, id string, interval time.Duration, onUpdate func(*models.Job)) (*models.Job, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		var job models.Job
		if err := client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: http.MethodGet,
			Path:   "/api/simulations/" + id,
		}, &job); err != nil {
			return nil, fmt.Errorf("poll job: %w", err)
		}
		onUpdate(&job)
		switch job.Status {
		case models.JobError:
			return &job, nil
		case models.JobComplete:
			var full models.Job
			if err := client.SendAndParse(ctx, &xhttp.RequestOptions{
				Method:      http.MethodGet,
				Path:        "/api/simulations/" + id,
				QueryParams: map[string][]string{"include": {"results"}},
			}, &full); err != nil {
				return nil, fmt.Errorf("fetch results: %w", err)
			}
			return &full, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
