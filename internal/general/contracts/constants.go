package contracts

// Exchanges
const (
	ExchangeBookingTopic   = "booking_topic"
	ExchangeDriverTopic    = "driver_topic"
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueBookingOffers   = "booking_offers"
	QueueBookingStatus   = "booking_status"
	QueueOfferDeclines   = "offer_declines"
	QueueDriverStatus    = "driver_status"
	QueueLocationRelay   = "location_updates_relay"
	QueueLocationGateway = "location_updates_gateway"
)

// Routing patterns
const (
	RouteOfferPrefix         = "booking.offer."   // {driver_id}
	RouteBookingStatusPrefix = "booking.status."  // {status}
	RouteOfferDeclinePrefix  = "offer.decline."   // {booking_id}
	RouteDriverStatusPrefix  = "driver.status."   // {driver_id}
)
