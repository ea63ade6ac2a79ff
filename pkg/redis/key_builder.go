package redis

import (
	"fmt"

	"github.com/google/uuid"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Meeting key builders

func (kb *KeyBuilder) KeyMeeting(meetingID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyMeeting, meetingID))
}

func (kb *KeyBuilder) KeyMeetingByShare(code string) string {
	return kb.BuildKey(fmt.Sprintf(KeyMeetingByShare, code))
}

func (kb *KeyBuilder) KeyConfirmLock(meetingID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyConfirmLock, meetingID))
}

func (kb *KeyBuilder) KeyUserSummary(userID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyUserSummary, userID))
}

// Tally key builders

func (kb *KeyBuilder) KeyTimeTally(candidateID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyTimeTally, candidateID))
}

func (kb *KeyBuilder) KeyPlaceTally(candidateID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPlaceTally, candidateID))
}

func (kb *KeyBuilder) KeyMeetingTallies(meetingID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyMeetingTallies, meetingID))
}

// KeyCustom builds a key from an arbitrary pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
