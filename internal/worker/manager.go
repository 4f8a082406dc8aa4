package worker

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"lumio_social/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second

	// readBackoff is the pause after a failed stream read
	readBackoff = time.Second
)

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// Manager runs ranking workers over the forum stream. Each worker first
// drains its own unacked entries from a previous run, then follows new ones.
// Every entry is acked after one attempt, whether or not the handler
// succeeded, so the leaderboards are best-effort.
type Manager struct {
	consumer queue.Consumer
	handler  *Handler
	cfg      ManagerConfig

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	def := DefaultManagerConfig()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = def.BlockTimeout
	}
	return &Manager{consumer: consumer, handler: handler, cfg: cfg}
}

// Start creates the consumer group and launches the workers. Stop must be
// called to release them.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx); err != nil {
		return err
	}

	ctx, m.cancel = context.WithCancel(ctx)
	for i := 1; i <= m.cfg.WorkerCount; i++ {
		m.wg.Add(1)
		go m.run(ctx, i)
	}
	log.Printf("[Manager] Started %d ranking workers", m.cfg.WorkerCount)
	return nil
}

// Stop cancels the workers and waits for in-flight batches to finish.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] Workers stopped")
}

func (m *Manager) run(ctx context.Context, workerID int) {
	defer m.wg.Done()
	name := "worker-" + strconv.Itoa(workerID)

	for ctx.Err() == nil {
		batch, err := m.consumer.Redeliver(ctx, name, m.cfg.BatchSize)
		if err != nil {
			log.Printf("[Worker-%d] Redeliver failed: %v", workerID, err)
			break
		}
		if len(batch) == 0 {
			break
		}
		log.Printf("[Worker-%d] Replaying %d unacked entries", workerID, len(batch))
		m.apply(ctx, workerID, batch)
	}

	for ctx.Err() == nil {
		batch, err := m.consumer.Fetch(ctx, name, m.cfg.BatchSize, m.cfg.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker-%d] Fetch failed: %v", workerID, err)
			select {
			case <-ctx.Done():
			case <-time.After(readBackoff):
			}
			continue
		}
		m.apply(ctx, workerID, batch)
	}
}

// apply handles a batch in stream order and acks it in one call.
func (m *Manager) apply(ctx context.Context, workerID int, batch []queue.Message) {
	if len(batch) == 0 {
		return
	}

	ids := make([]string, 0, len(batch))
	for _, msg := range batch {
		ids = append(ids, msg.ID)

		if msg.Err != nil {
			eventsApplied.WithLabelValues("undecodable", "dropped").Inc()
			log.Printf("[Worker-%d] Dropping undecodable entry %s: %v", workerID, msg.ID, msg.Err)
			continue
		}
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			eventsApplied.WithLabelValues(msg.Event.Type, "failed").Inc()
			log.Printf("[Worker-%d] Entry %s (%s) failed: %v", workerID, msg.ID, msg.Event.Type, err)
			continue
		}
		eventsApplied.WithLabelValues(msg.Event.Type, "ok").Inc()
	}

	// ack with a detached context so a shutdown mid-batch does not leave
	// handled entries pending
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := m.consumer.Ack(ackCtx, ids...); err != nil {
		log.Printf("[Worker-%d] Ack of %d entries failed: %v", workerID, len(ids), err)
	}
}
