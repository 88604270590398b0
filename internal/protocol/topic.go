package protocol

import (
	"strings"

	"github.com/google/uuid"
)

// Topic is a named broadcast channel. Connections opt in by subscribing;
// TopicAll addresses every live connection regardless of subscriptions.
type Topic string

const (
	TopicAll        Topic = "all"
	TopicNavigation Topic = "navigation"
	TopicFileSystem Topic = "filesystem"
	TopicDebug      Topic = "debug"
	TopicMetrics    Topic = "metrics"
	TopicJobEvents  Topic = "job-events"
)

const (
	dataTopicPrefix   = "data:"
	directTopicPrefix = "direct:"
)

// DataTopic returns the parametric topic carrying updates for one source.
func DataTopic(source string) Topic {
	return Topic(dataTopicPrefix + source)
}

// DirectTopic returns the topic addressing a single connection.
func DirectTopic(id uuid.UUID) Topic {
	return Topic(directTopicPrefix + id.String())
}

// IsDirect reports whether the topic addresses a single connection, and if
// so which one.
func (t Topic) IsDirect() (uuid.UUID, bool) {
	s := string(t)
	if !strings.HasPrefix(s, directTopicPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(s, directTopicPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (t Topic) String() string { return string(t) }

// ParseTopic normalizes a topic string from the administrative surface.
// Unrecognized names fall back to TopicAll; subscription matching inside the
// hub stays exact-string and never goes through this.
func ParseTopic(s string) Topic {
	switch strings.ToLower(s) {
	case "navigation":
		return TopicNavigation
	case "filesystem":
		return TopicFileSystem
	case "debug":
		return TopicDebug
	case "metrics":
		return TopicMetrics
	case "job-events":
		return TopicJobEvents
	case "all":
		return TopicAll
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, dataTopicPrefix) {
		return Topic(lower)
	}
	if strings.HasPrefix(lower, directTopicPrefix) {
		if id, err := uuid.Parse(strings.TrimPrefix(lower, directTopicPrefix)); err == nil {
			return DirectTopic(id)
		}
	}
	return TopicAll
}
