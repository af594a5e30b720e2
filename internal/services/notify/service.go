// Package notify stores user notifications and pushes them to live connections.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/websocket"
)

// ErrInvalidType is returned for an unknown notification type
var ErrInvalidType = errors.New("invalid notification type")

// Pusher delivers a message to the live connections of a user
type Pusher interface {
	SendToUser(userID string, message interface{}) int
}

// Service is the notification sink
type Service struct {
	store  store.Store
	pusher Pusher
}

// New creates a notification service. pusher may be nil.
func New(s store.Store, pusher Pusher) *Service {
	return &Service{store: s, pusher: pusher}
}

// Create stores a notification for the user's AuthUUID and pushes it to any open connection
func (s *Service) Create(ctx context.Context, authUUID, message string, typ models.NotificationType) (*models.Notification, error) {
	if typ == "" {
		typ = models.NotificationInfo
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if authUUID == "" {
		return nil, errors.New("notification recipient is required")
	}

	n := &models.Notification{UserID: authUUID, Message: message, Type: typ}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if s.pusher != nil {
		s.pusher.SendToUser(authUUID, websocket.Message{Type: websocket.TypeNotification, Data: n})
	}
	return n, nil
}

// Notify is the best-effort form of Create used by workflow side effects.
// Failures are logged and never reach the caller.
func (s *Service) Notify(ctx context.Context, authUUID, message string, typ models.NotificationType) {
	if _, err := s.Create(ctx, authUUID, message, typ); err != nil {
		log.Printf("⚠️ Notification to %s failed: %v", authUUID, err)
	}
}

// NotifyUser resolves the user's AuthUUID and notifies best-effort
func (s *Service) NotifyUser(ctx context.Context, userID uint, message string, typ models.NotificationType) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		log.Printf("⚠️ Notification skipped, user %d not resolved: %v", userID, err)
		return
	}
	s.Notify(ctx, u.AuthUUID, message, typ)
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, authUUID string) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, authUUID)
}

// MarkRead flags a notification as read and returns it
func (s *Service) MarkRead(ctx context.Context, id uint) (*models.Notification, error) {
	return s.store.MarkNotificationRead(ctx, id)
}

// Delete removes a notification
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.store.DeleteNotification(ctx, id)
}
