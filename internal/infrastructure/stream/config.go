package stream

import "time"

// PublisherConfig configures the NATS JetStream publisher.
type PublisherConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration

	// Breaker settings. FailureThreshold 0 disables the breaker.
	BreakerName      string
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// SubscriberConfig configures a durable JetStream consumer.
// DurableName plays the role of the consumer group: a new durable starts from
// the earliest message of the stream, an existing one resumes where it acked.
type SubscriberConfig struct {
	URL            string
	DurableName    string
	QueueGroup     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	AckWaitTimeout time.Duration
	CloseTimeout   time.Duration
}
