package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"sla-monitor/internal/config"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
	"sla-monitor/internal/utils"
	"sla-monitor/pkg/telegram"
)

// Store is the slice of the persistence layer the notifier needs.
type Store interface {
	FetchPendingNotifications(ctx context.Context, limit int) ([]models.QueuedNotification, error)
	UpdateNotificationStatus(ctx context.Context, id, status, lastError string) error
}

// Service drains the notification queue with a worker pool: each pending
// row is pushed to WebSocket clients and, for critical severity, mirrored
// to the configured Telegram chats.
type Service struct {
	store   Store
	logger  *logging.Logger
	config  config.Config
	hub     *Hub
	jobs    chan models.QueuedNotification
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
	limiter *rate.Limiter

	mu       sync.Mutex
	inFlight map[string]bool
}

func New(store Store, hub *Hub, logger *logging.Logger, cfg config.Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:    store,
		logger:   logger,
		config:   cfg,
		hub:      hub,
		jobs:     make(chan models.QueuedNotification, cfg.Notify.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Notify.TelegramRate), cfg.Notify.TelegramRate),
		inFlight: make(map[string]bool),
	}
}

// Start launches the queue poller and the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	s.wg.Add(1)
	go s.poll()
	for i := 0; i < s.config.Notify.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels the poller and workers.
func (s *Service) Stop() {
	s.cancel()
}

// poll enqueues pending rows on a fixed interval, skipping rows a worker
// is already handling.
func (s *Service) poll() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Duration(s.config.Notify.PollSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Notification poller stopped")
			return
		case <-ticker.C:
			s.fetchPending()
		}
	}
}

func (s *Service) fetchPending() {
	pending, err := s.store.FetchPendingNotifications(s.ctx, s.config.Notify.QueueSize)
	if err != nil {
		s.logger.Errorf("Fetching pending notifications failed: %v", err)
		return
	}

	for _, n := range pending {
		s.mu.Lock()
		if s.inFlight[n.ID] {
			s.mu.Unlock()
			continue
		}
		s.inFlight[n.ID] = true
		s.mu.Unlock()

		select {
		case s.jobs <- n:
		default:
			s.release(n.ID)
			s.logger.Errorf("Notification queue full, dropping id=%s", n.ID)
		}
	}
}

func (s *Service) release(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Notification worker %d stopped", id)
			return
		case n := <-s.jobs:
			s.deliver(n)
			s.release(n.ID)
		}
	}
}

// deliver pushes one notification to its channels and finalizes the row.
func (s *Service) deliver(n models.QueuedNotification) {
	s.hub.Broadcast(map[string]interface{}{
		"event":        "notification",
		"notification": n,
	})

	var deliveryErr error
	if n.Severity == models.SeverityCritical && s.config.Notify.TelegramToken != "" {
		deliveryErr = s.sendTelegram(n)
	}

	final := models.NotificationSent
	lastError := ""
	if deliveryErr != nil {
		final = models.NotificationFailed
		lastError = deliveryErr.Error()
		s.logger.Errorf("Delivery failed for notification %s: %v", n.ID, deliveryErr)
	}
	if err := s.store.UpdateNotificationStatus(s.ctx, n.ID, final, lastError); err != nil {
		s.logger.Errorf("Finalizing notification %s failed: %v", n.ID, err)
		return
	}
	s.logger.Infof("Notification %s to %s %s", n.ID, n.Recipient, final)
}

func (s *Service) sendTelegram(n models.QueuedNotification) error {
	if len(s.config.Notify.TelegramChatIDs) == 0 {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN set but no TELEGRAM_CHAT_IDS configured")
	}
	if err := s.limiter.Wait(s.ctx); err != nil {
		return fmt.Errorf("telegram rate limit wait failed: %w", err)
	}
	return utils.Retry(s.logger, 3, time.Second, func() error {
		return telegram.Send(s.ctx, s.config.Notify.TelegramToken, s.config.Notify.TelegramChatIDs, n.Message)
	})
}
