package shipentegra

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/atolyeshop/etsysync/internal/domain"
)

// TrackingStatus is the normalized view of a carrier tracking payload
type TrackingStatus struct {
	Class       domain.CarrierSignal
	Display     string
	DeliveredAt *time.Time
	Raw         string
}

var deliveredKeywords = []string{
	"delivered",
	"completed",
	"teslim edildi",
	"teslim alindi",
}

var inTransitKeywords = []string{
	"in transit",
	"out for delivery",
	"shipped",
	"on the way",
	"yolda",
	"dagitima cikti",
	"kargoya verildi",
	"transfer",
}

// Normalize maps a carrier tracking payload into a normalized
// classification. A nil payload or a non-success status marker yields nil,
// which callers treat as "no signal", not an error.
func Normalize(resp *ActivitiesResponse) *TrackingStatus {
	if resp == nil || resp.Status != "success" {
		return nil
	}

	data := resp.Data
	lastEvent := ""
	if len(data.Activities) > 0 {
		lastEvent = data.Activities[len(data.Activities)-1].Event
	}

	needle := strings.ToLower(strings.Join([]string{data.Status, data.Summary, lastEvent}, " "))

	class := domain.CarrierUnknown
	if containsAny(needle, deliveredKeywords) {
		// Delivered wins when both keyword sets match
		class = domain.CarrierDelivered
	} else if containsAny(needle, inTransitKeywords) {
		class = domain.CarrierInTransit
	}

	status := &TrackingStatus{
		Class:   class,
		Display: firstNonEmpty(data.Status, data.Summary, lastEvent, "unknown"),
	}

	if class == domain.CarrierDelivered {
		status.DeliveredAt = parseDeliveryDate(data.DeliveryDate)
	}

	if raw, err := json.Marshal(data); err == nil {
		status.Raw = string(raw)
	}

	return status
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parseDeliveryDate accepts ISO-8601 strings or epoch seconds. Unparsable
// values yield nil; a bad date never fails a sync run.
func parseDeliveryDate(value interface{}) *time.Time {
	switch v := value.(type) {
	case float64:
		t := time.Unix(int64(v), 0).UTC()
		return &t
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return nil
		}
		if epoch, err := strconv.ParseInt(text, 10, 64); err == nil {
			t := time.Unix(epoch, 0).UTC()
			return &t
		}
		layouts := []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, text); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}
