package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DigestPublisher ships flushed digests somewhere durable.
type DigestPublisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type DigestConfig struct {
	Interval  time.Duration // flush period
	Threshold int           // distinct entries that force an early flush
	Topic     string
	Publisher DigestPublisher
}

// DigestEntry is one distinct error with its occurrence count.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// ErrorDigest deduplicates error entries and publishes them in batches.
// Entries are keyed on level, message and caller; fields of the first
// occurrence are kept.
type ErrorDigest struct {
	cfg     DigestConfig
	entries map[string]*DigestEntry
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

func NewErrorDigest(cfg DigestConfig) *ErrorDigest {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &ErrorDigest{
		cfg:     cfg,
		entries: make(map[string]*DigestEntry),
		ctx:     ctx,
		cancel:  cancel,
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *ErrorDigest) Add(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := digestKey(level, message, caller)

	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		d.entries[key] = &DigestEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	if len(d.entries) >= d.cfg.Threshold {
		d.flushLocked()
	}
}

// Len reports the number of distinct entries waiting for the next flush.
func (d *ErrorDigest) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Close stops the flush loop after a final flush.
func (d *ErrorDigest) Close() {
	d.once.Do(func() {
		d.cancel()
		d.wg.Wait()
	})
}

func digestKey(level, message, caller string) string {
	sum := sha256.Sum256([]byte(level + "\x00" + message + "\x00" + caller))
	return fmt.Sprintf("%x", sum)
}

func (d *ErrorDigest) loop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			d.flushLocked()
			d.mu.Unlock()
		case <-d.ctx.Done():
			d.mu.Lock()
			batch := d.takeLocked()
			d.mu.Unlock()
			d.publish(batch)
			return
		}
	}
}

func (d *ErrorDigest) takeLocked() []DigestEntry {
	if len(d.entries) == 0 {
		return nil
	}
	batch := make([]DigestEntry, 0, len(d.entries))
	for _, e := range d.entries {
		batch = append(batch, *e)
	}
	d.entries = make(map[string]*DigestEntry)
	return batch
}

func (d *ErrorDigest) flushLocked() {
	batch := d.takeLocked()
	if batch == nil {
		return
	}
	go d.publish(batch)
}

func (d *ErrorDigest) publish(batch []DigestEntry) {
	if len(batch) == 0 || d.cfg.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.cfg.Publisher.PublishMessage(ctx, d.cfg.Topic, batch); err != nil {
		// stderr: the digest sink is down.
		b, _ := json.Marshal(map[string]string{"level": "warn", "message": "error digest publish failed", "error": err.Error()})
		fmt.Fprintln(os.Stderr, string(b))
	}
}
