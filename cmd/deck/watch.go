package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/appdeck/internal/client"
	"github.com/alfredjeanlab/appdeck/internal/events"
	"github.com/alfredjeanlab/appdeck/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch [topic...]",
	Short:   "Stream catalog change events",
	GroupID: "views",
	Long: `Stream catalog change events as they happen. Topics may use "*" for one
token and ">" for the rest, e.g. "deck.application.*". Events are read from
NATS when DECK_NATS_URL (or the active remote) names a server, otherwise from
the catalog server's event stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		natsURL := os.Getenv("DECK_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return watchNATS(ctx, cmd.OutOrStdout(), natsURL, args)
		}
		return watchStream(ctx, cmd.OutOrStdout(), args)
	},
}

// watchNATS prints events from the NATS bus until ctx is done.
func watchNATS(ctx context.Context, w io.Writer, natsURL string, topics []string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()
	return watchBus(ctx, w, sub, topics)
}

// watchBus subscribes once per topic (all events when topics is empty) and
// prints what arrives until ctx is done or every subscription is closed.
func watchBus(ctx context.Context, w io.Writer, sub events.Subscriber, topics []string) error {
	if len(topics) == 0 {
		topics = []string{events.TopicAll}
	}

	merged := make(chan events.Message, 64)
	var wg sync.WaitGroup
	for _, topic := range topics {
		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		defer cancel()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range ch {
				select {
				case merged <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-merged:
			if !ok {
				return nil
			}
			printWatchEvent(w, time.Now(), msg.Topic, msg.Data)
		}
	}
}

func watchStream(ctx context.Context, w io.Writer, topics []string) error {
	return deckClient.StreamEvents(ctx, topics, func(evt client.StreamEvent) error {
		printWatchEvent(w, time.Now(), evt.Topic, evt.Data)
		return nil
	})
}

func printWatchEvent(w io.Writer, at time.Time, topic string, data []byte) {
	if jsonOutput {
		fmt.Fprintf(w, "{\"topic\":%q,\"data\":%s}\n", topic, data)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n",
		ui.RenderMuted(at.Format("15:04:05")),
		ui.RenderAccent(topic),
		strings.TrimSpace(string(data)),
	)
}
