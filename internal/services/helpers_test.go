package services_test

import (
	"sync"

	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/services"
)

// recordingBroadcaster captures broadcasts
type recordingBroadcaster struct {
	mu          sync.Mutex
	modes       []models.AssignmentMode
	invalidated [][]models.QueryKey
	feedback    []services.FeedbackEvent
}

func (b *recordingBroadcaster) BroadcastMode(mode models.AssignmentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes = append(b.modes, mode)
}

func (b *recordingBroadcaster) BroadcastInvalidate(keys []models.QueryKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidated = append(b.invalidated, keys)
}

func (b *recordingBroadcaster) BroadcastFeedback(event services.FeedbackEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feedback = append(b.feedback, event)
}

func solo(id string) models.Solo {
	return models.Solo{Participant: models.Participant{ParticipantID: id, FirstName: id}}
}
