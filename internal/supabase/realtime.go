package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

// PublishEvent is a placeholder for explicit Realtime publishing. The web
// client subscribes to Postgres changes, so the inserts done by this service
// already trigger Realtime; nothing extra is sent here yet.
func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	return nil
}

func (r *RealtimeClient) PublishGenerationEvent(generationID string, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("generation:%s", generationID)
	return r.PublishEvent(channel, event, payload)
}

func (r *RealtimeClient) PublishSyncEvent(event string, payload map[string]interface{}) error {
	return r.PublishEvent("sessions:sync", event, payload)
}

// Event payloads
func DerenderCompletedPayload(processedURL string, timestamp int64) map[string]interface{} {
	return map[string]interface{}{
		"status":        "completed",
		"processed_url": processedURL,
		"timestamp":     timestamp,
	}
}

func SyncCompletedPayload(created, failed int) map[string]interface{} {
	return map[string]interface{}{
		"status":        "synced",
		"newly_created": created,
		"failed":        failed,
	}
}
