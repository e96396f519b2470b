// Package event defines the wire contract between services: the envelope
// published to Kafka, the topic names, and one payload type per entity
// lifecycle transition.
package event

import (
	"encoding/json"
	"time"
)

// Envelope wraps every published payload. ID is the consumer-side dedupe key.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Producer   string          `json:"producer"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Topic names are a naming contract shared with unmigrated services; do not
// rename them.
const (
	TopicUserCreated         = "user.created"
	TopicUserUpdated         = "user.updated"
	TopicUserDeleted         = "user.deleted"
	TopicPostCreated         = "post.created"
	TopicPostUpdated         = "post.updated"
	TopicPostDeleted         = "post.deleted"
	TopicCommentCreated      = "comment.created"
	TopicCommentDeleted      = "comment.deleted"
	TopicPostLikeCreated     = "post.like.created"
	TopicPostLikeDeleted     = "post.like.deleted"
	TopicCommentLikeCreated  = "comment.like.created"
	TopicCommentLikeDeleted  = "comment.like.deleted"
	TopicSubscriptionCreated = "subscription.created"
	TopicSubscriptionDeleted = "subscription.deleted"
	TopicMediaUpload         = "media.upload"
	TopicMediaDeleted        = "media.deleted"
)

// AllTopics lists every topic, for consumers that follow the whole stream
// (statistics).
func AllTopics() []string {
	return []string{
		TopicUserCreated, TopicUserUpdated, TopicUserDeleted,
		TopicPostCreated, TopicPostUpdated, TopicPostDeleted,
		TopicCommentCreated, TopicCommentDeleted,
		TopicPostLikeCreated, TopicPostLikeDeleted,
		TopicCommentLikeCreated, TopicCommentLikeDeleted,
		TopicSubscriptionCreated, TopicSubscriptionDeleted,
		TopicMediaUpload, TopicMediaDeleted,
	}
}

// DeadLetterTopic returns the dead-letter channel for a topic.
func DeadLetterTopic(topic string) string {
	return topic + ".dlq"
}
