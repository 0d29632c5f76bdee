// Package messaging provides a broker-agnostic publisher over Google
// Pub/Sub, NSQ, Kafka and NATS. The backend is selected by driver name at
// startup; callers publish through the Publisher interface and never touch
// broker SDKs directly.
package messaging
