package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"fleet-backend/internal/model"
)

// Sender sends one web push notification. Abstracted so tests can intercept.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool notifies watchers when a machine they watch is released from an
// allocation. Jobs carry the machine ID.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines. They run until ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case machineID := <-wp.jobs:
			wp.notifyWatchers(ctx, machineID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a released machine for notification.
func (wp *WorkerPool) Dispatch(machineID string) {
	wp.jobs <- machineID
}

// notifyWatchers fetches the subscriptions watching the machine and pushes the
// release notice to each.
func (wp *WorkerPool) notifyWatchers(ctx context.Context, machineID string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_equipment_mapping sem ON sem.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sem.equipment_id = ?", machineID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for machine %s: %v", machineID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := machineID
	var eq model.Equipment
	if err := wp.db.WithContext(ctx).
		Select("unit_number").
		First(&eq, "id = ?", machineID).Error; err != nil {
		log.Printf("error fetching equipment %s: %v", machineID, err)
	} else if eq.UnitNumber != "" {
		label = eq.UnitNumber
	}

	message := fmt.Sprintf("Máquina %s está disponível!", label)
	log.Printf("sending %d notifications for machine %s", len(subscriptions), machineID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// 410 means the browser dropped the subscription; clean it up.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
