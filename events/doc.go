// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events publishes ballot lifecycle and vote notifications.

Events are JSON documents written to Kafka with the ballot ID as the message
key and the event type in an "event-type" header:

	ballot.created, ballot.suspended, ballot.unsuspended, ballot.ended
	vote.submitted

Publishing happens after the database commit and is best effort: a failed
publish is logged and never fails the request. Without KAFKA_BROKERS the
service uses NopPublisher. Recorder keeps events in memory for tests.
*/
package events
