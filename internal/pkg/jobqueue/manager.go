package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/zhandosm/baraholka/internal/pkg/env"
)

// Manager manages the global job queue and the periodic maintenance jobs
type Manager struct {
	queue         *Queue
	expiryTicker  *time.Ticker
	cleanupTicker *time.Ticker
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 5
		if v, err := strconv.Atoi(env.GetEnv("JOB_WORKERS", "5")); err == nil && v > 0 {
			workerCount = v
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and the periodic schedules
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	expiryInterval := 10 * time.Minute
	if v, err := strconv.Atoi(env.GetEnv("EXPIRY_SWEEP_MINUTES", "10")); err == nil && v > 0 {
		expiryInterval = time.Duration(v) * time.Minute
	}
	m.expiryTicker = time.NewTicker(expiryInterval)
	m.wg.Add(1)
	go m.expiryWorker()

	cleanupInterval := 6 * time.Hour
	if v, err := strconv.Atoi(env.GetEnv("CLEANUP_SWEEP_HOURS", "6")); err == nil && v > 0 {
		cleanupInterval = time.Duration(v) * time.Hour
	}
	m.cleanupTicker = time.NewTicker(cleanupInterval)
	m.wg.Add(1)
	go m.cleanupWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.expiryTicker != nil {
		m.expiryTicker.Stop()
	}
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}

	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// expiryWorker periodically enqueues the listing and promotion expiry sweeps
func (m *Manager) expiryWorker() {
	defer m.wg.Done()
	log.Info("[JobQueue Manager] Started expiry worker")

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Expiry worker stopping")
			return
		case <-m.expiryTicker.C:
			payload := MaintenanceJobPayload{Now: time.Now()}
			if _, err := m.queue.EnqueueJob(JobTypeExpireListings, payload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue listing expiry sweep: %v", err)
			}
			if _, err := m.queue.EnqueueJob(JobTypeExpirePromotions, payload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue promotion expiry sweep: %v", err)
			}
		}
	}
}

// cleanupWorker periodically enqueues the table cleanup sweeps
func (m *Manager) cleanupWorker() {
	defer m.wg.Done()
	log.Info("[JobQueue Manager] Started cleanup worker")

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Cleanup worker stopping")
			return
		case <-m.cleanupTicker.C:
			now := time.Now()
			verifyPayload := MaintenanceJobPayload{Now: now, Before: now}
			if _, err := m.queue.EnqueueJob(JobTypeCleanupVerifications, verifyPayload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue verification cleanup: %v", err)
			}
			attemptsPayload := MaintenanceJobPayload{Now: now, Before: now.Add(-24 * time.Hour)}
			if _, err := m.queue.EnqueueJob(JobTypeCleanupLoginAttempts, attemptsPayload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue login attempt cleanup: %v", err)
			}
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
