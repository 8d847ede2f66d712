package server

import (
	"context"

	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/notifications"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventCommentAdded   = "comment_added"
	EventCommentRemoved = "comment_removed"
)

// publishBroadcastEvent fans a feed event out to every connected client.
// With Redis the event goes through pub/sub so every instance delivers it;
// without Redis only the local hub does. Failures never fail the request.
func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload any) {
	if s.notifier.Enabled() {
		if err := s.notifier.PublishEvent(ctx, eventType, payload); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish feed event", "event_type", eventType, "error", err)
		}
		return
	}

	message, err := notifications.EncodeEvent(eventType, payload)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to encode feed event", "event_type", eventType, "error", err)
		return
	}
	s.hub.BroadcastAll(message)
}

func likesPayload(postID string, likes []models.Like) map[string]any {
	return map[string]any{
		"post_id": postID,
		"likes":   likes,
	}
}

func commentsPayload(postID string, comments []models.Comment) map[string]any {
	return map[string]any{
		"post_id":  postID,
		"comments": comments,
	}
}
