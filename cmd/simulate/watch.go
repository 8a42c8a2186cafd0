package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"PortfolioSim/internal/repository"
	pkgkafka "PortfolioSim/pkg/kafka"

	"github.com/spf13/cobra"
)

func watchCmd(root *rootOptions) *cobra.Command {
	var (
		runID     string
		fromStart bool
		brokers   []string
		topic     string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow job lifecycle events published to Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if len(brokers) == 0 {
				brokers = cfg.Kafka.Brokers
			}
			if topic == "" {
				topic = cfg.Kafka.Topic
			}
			lgr := root.logger(cmd.ErrOrStderr())

			// Group-less so that every watcher sees every event.
			consumer, err := pkgkafka.NewConsumer(lgr,
				pkgkafka.WithConsumerBrokers(brokers),
				pkgkafka.WithConsumerFromBeginning(fromStart),
				pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
			)
			if err != nil {
				return err
			}
			consumer.RegisterHandler(newLifecyclePrinter(topic, runID, cmd.OutOrStdout()))
			if err := consumer.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return consumer.Stop(ctx)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "only print events of this run")
	cmd.Flags().BoolVar(&fromStart, "from-beginning", false, "replay the topic from the oldest offset")
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka brokers (defaults to config)")
	cmd.Flags().StringVar(&topic, "topic", "", "lifecycle topic (defaults to config)")
	return cmd
}

// lifecyclePrinter writes one line per lifecycle message.
type lifecyclePrinter struct {
	topic string
	runID string
	mu    sync.Mutex
	out   io.Writer
}

func newLifecyclePrinter(topic, runID string, out io.Writer) *lifecyclePrinter {
	return &lifecyclePrinter{topic: topic, runID: runID, out: out}
}

func (p *lifecyclePrinter) Topic() string { return p.topic }

func (p *lifecyclePrinter) Handle(_ context.Context, key, value []byte) error {
	if p.runID != "" && string(key) != p.runID {
		return nil
	}
	var msg repository.LifecycleMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		// Not ours; retrying cannot fix it.
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ts := msg.Timestamp.Format(time.RFC3339)
	switch {
	case msg.Stats != nil:
		fmt.Fprintf(p.out, "%s %s %-8s trajectories=%d days=%d\n", ts, msg.RunID, msg.Type, msg.Stats.Simulations, msg.Stats.Days)
	case msg.Message != "":
		fmt.Fprintf(p.out, "%s %s %-8s %s\n", ts, msg.RunID, msg.Type, msg.Message)
	case msg.Progress > 0:
		fmt.Fprintf(p.out, "%s %s %-8s %d%%\n", ts, msg.RunID, msg.Type, msg.Progress)
	default:
		fmt.Fprintf(p.out, "%s %s %s\n", ts, msg.RunID, msg.Type)
	}
	return nil
}
