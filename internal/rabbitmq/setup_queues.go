package rabbitmq

const (
	// ExchangeUserEvents обменник событий изменения учётных записей.
	ExchangeUserEvents = "user-events"
	// RoutingKeyUserUpdated ключ события UserChanged.
	RoutingKeyUserUpdated = "user.updated"
	// QueueReferralTrigger очередь воркера реферальных начислений.
	QueueReferralTrigger = "referral.user-updated"
)

// QueueConfig очередь и ключ, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetUserEventQueues очереди, которые слушают события пользователей.
func GetUserEventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueReferralTrigger, RoutingKey: RoutingKeyUserUpdated},
	}
}
