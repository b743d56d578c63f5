package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/auth"
	"github.com/annel0/blockverse-tweaks/internal/eventbus"
)

const (
	defaultNATSURL = "nats://127.0.0.1:4222"
	defaultStream  = "TWEAKS"
)

func main() {
	var (
		natsURL    = flag.String("nats", defaultNATSURL, "NATS server URL")
		stream     = flag.String("stream", defaultStream, "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, types, secret, hash")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		wait       = flag.Duration("wait", 30*time.Second, "How long to wait for events without -follow")
		password   = flag.String("password", "", "Password for the hash command")
	)
	flag.Parse()

	switch *command {
	case "tail":
		if err := tailEvents(&TailOptions{
			URL:        *natsURL,
			Stream:     *stream,
			EventTypes: parseStringList(*eventTypes),
			Limit:      *limit,
			Follow:     *follow,
			Wait:       *wait,
		}); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "types":
		fmt.Println("📋 Available event types")
		for _, t := range []string{
			eventbus.TypeSpawnerDisabled,
			eventbus.TypeSpawnerReenabled,
			eventbus.TypeSpawnerReset,
			eventbus.TypeStackSizesApplied,
		} {
			fmt.Printf("  %s\n", t)
		}

	case "secret":
		// Значение для server.jwt_secret
		fmt.Println(auth.GenerateSecureSecret())

	case "hash":
		hash, err := auth.HashPassword(*password)
		if err != nil {
			log.Fatalf("❌ Hash failed: %v", err)
		}
		fmt.Println(hash)

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, types, secret, hash")
		os.Exit(1)
	}
}

type TailOptions struct {
	URL        string
	Stream     string
	EventTypes []string
	Limit      int
	Follow     bool
	Wait       time.Duration
}

// tailEvents выводит новые события твиков из JetStream
func tailEvents(opts *TailOptions) error {
	bus, err := eventbus.NewJetStreamBus(opts.URL, opts.Stream, 0)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if !opts.Follow {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Wait)
		defer cancel()
	}

	fmt.Printf("🎬 Tailing events (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)

	var count int64
	done := make(chan struct{})
	var once atomic.Bool
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: opts.EventTypes}, func(_ context.Context, ev *eventbus.Envelope) {
		printEvent(ev)
		if n := atomic.AddInt64(&count, 1); !opts.Follow && n >= int64(opts.Limit) && once.CompareAndSwap(false, true) {
			close(done)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	select {
	case <-ctx.Done():
	case <-done:
	}
	fmt.Printf("\n📊 Total events: %d\n", atomic.LoadInt64(&count))
	return nil
}

// printEvent выводит событие в читаемом формате
func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %s [%s] %s\n",
		ev.Timestamp.Local().Format("15:04:05"),
		ev.Source,
		ev.EventType,
		ev.ID)

	switch ev.EventType {
	case eventbus.TypeSpawnerDisabled, eventbus.TypeSpawnerReenabled, eventbus.TypeSpawnerReset:
		var p eventbus.SpawnerPayload
		if err := ev.Decode(&p); err == nil {
			fmt.Printf("  Spawner: %s (%d,%d,%d) mobs: %d/%d\n", p.Dimension, p.X, p.Y, p.Z, p.SpawnedMobs, p.Cap)
		}
	case eventbus.TypeStackSizesApplied:
		var p eventbus.StackSizesPayload
		if err := ev.Decode(&p); err == nil {
			fmt.Printf("  Rules: %d Changed items: %d\n", p.Rules, p.Changed)
		}
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
