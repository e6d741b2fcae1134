package redisrepo

import "fmt"

const ns = "busseat:v1"

// KeyTripSeating caches a trip's normalized layout and sold seats.
func KeyTripSeating(tripID int64) string {
	return fmt.Sprintf("%s:trip:%d:seating", ns, tripID)
}

// KeyTripFare caches the route and effective override used to price a trip.
func KeyTripFare(tripID int64) string {
	return fmt.Sprintf("%s:trip:%d:fare", ns, tripID)
}

func KeyIdemReserve(sessionID, idemKey string) string {
	return fmt.Sprintf("%s:idem:reserve:%s:%s", ns, sessionID, idemKey)
}

func KeyIdemPurchase(sessionID, idemKey string) string {
	return fmt.Sprintf("%s:idem:tickets:%s:%s", ns, sessionID, idemKey)
}

func ChannelTripsChanged() string {
	return ns + ":trips:changed"
}
