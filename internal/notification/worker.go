// Package notification delivers alarm alerts over email and web push
// through a small worker pool, decoupled from the monitoring loop.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"door-alarm-backend/config"
	"door-alarm-backend/internal/parse"
	"door-alarm-backend/internal/store"
)

// AlarmNotice is one unit of work: a single triggered alarm.
type AlarmNotice struct {
	Duration time.Duration
	FiredAt  time.Time
}

// PushSender defines the interface for sending a web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of PushSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for delivering alarm alerts.
type WorkerPool struct {
	size    int
	jobs    chan AlarmNotice
	store   store.Store
	mailCfg config.MailConfig
	webpush *webpush.Options
	mail    MailSender
	push    PushSender
}

// NewWorkerPool creates a new worker pool. webpushOptions may be nil when no
// VAPID keys are configured; push delivery is skipped in that case.
func NewWorkerPool(size int, st store.Store, mailCfg config.MailConfig, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan AlarmNotice, size), // Buffered channel
		store:   st,
		mailCfg: mailCfg,
		webpush: webpushOptions,
		mail:    &SMTPSender{}, // Use the real senders by default
		push:    &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case notice := <-wp.jobs:
			log.Printf("Worker %d processing alarm fired at %s", id, notice.FiredAt.Format(time.RFC3339))
			wp.sendAlarmEmail(ctx, notice)
			wp.sendPushNotifications(ctx, notice)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues one alarm notice. It never blocks the monitoring loop; if
// the queue is full the notice is dropped with a log line.
func (wp *WorkerPool) Dispatch(duration time.Duration, firedAt time.Time) {
	select {
	case wp.jobs <- AlarmNotice{Duration: duration, FiredAt: firedAt}:
	default:
		log.Printf("notification: queue full, dropping alarm notice")
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan AlarmNotice {
	return wp.jobs
}

// sendAlarmEmail reads the stored mail configuration and sends the alert.
// Missing or incomplete configuration is not an error; the alarm itself is
// already recorded.
func (wp *WorkerPool) sendAlarmEmail(ctx context.Context, notice AlarmNotice) {
	cfg, err := wp.store.GetMailConfig(ctx)
	if err != nil {
		log.Printf("notification: load mail config: %v", err)
		return
	}
	if cfg == nil || !cfg.Complete() {
		log.Printf("notification: mail not configured, skipping alarm email")
		return
	}

	recipients := parse.Recipients(cfg.RecipientEmails)
	if len(recipients) == 0 {
		log.Printf("notification: no valid recipients configured, skipping alarm email")
		return
	}

	addr := fmt.Sprintf("%s:%d", wp.mailCfg.SMTPHost, wp.mailCfg.SMTPPort)
	auth := smtp.PlainAuth("", cfg.SenderEmail, cfg.AppPassword, wp.mailCfg.SMTPHost)
	msg := composeAlarmEmail(cfg.SenderEmail, recipients, wp.mailCfg.LocationLabel, notice)

	if err := wp.mail.Send(addr, auth, cfg.SenderEmail, recipients, msg); err != nil {
		log.Printf("notification: alarm email failed (%s): %v", classifySendError(err), err)
		return
	}
	log.Printf("notification: alarm email sent to %d recipient(s)", len(recipients))
}

// sendPushNotifications fans the alert out to every stored browser
// subscription.
func (wp *WorkerPool) sendPushNotifications(ctx context.Context, notice AlarmNotice) {
	if wp.webpush == nil {
		return
	}

	subscriptions, err := wp.store.ListPushSubscriptions(ctx)
	if err != nil {
		log.Printf("notification: fetch push subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d push notifications", len(subscriptions))
	message := fmt.Sprintf("Door alarm triggered! The door has been open for more than %d seconds.",
		int(notice.Duration.Seconds()))
	for _, sub := range subscriptions {
		wp.sendPush(ctx, sub.Endpoint, sub.P256DH, sub.Auth, []byte(message))
	}
}

// sendPush sends a single web push notification.
func (wp *WorkerPool) sendPush(ctx context.Context, endpoint, p256dh, auth string, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}

	resp, err := wp.push.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", endpoint)
		if err := wp.store.DeletePushSubscription(ctx, endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
